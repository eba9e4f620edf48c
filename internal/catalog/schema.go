package catalog

// Field names a relationship array on a record.
type Field string

const (
	FieldSends      Field = "sends"
	FieldReceives   Field = "receives"
	FieldSubscribes Field = "subscribes"
	FieldInforms    Field = "informs"
	FieldReads      Field = "reads"
	FieldIssues     Field = "issues"
)

type RelationKind string

const (
	Produces    RelationKind = "produces"
	Consumes    RelationKind = "consumes"
	TriggeredBy RelationKind = "triggered-by"
	Dispatches  RelationKind = "dispatches"
	Subscribes  RelationKind = "subscribes"
	Informs     RelationKind = "informs"
	Reads       RelationKind = "reads"
	Issues      RelationKind = "issues"
)

// RelationField describes one relationship array of a collection and the
// collections its references point into.
type RelationField struct {
	Field   Field
	Kind    RelationKind
	Targets []Collection
}

var schema = map[Collection][]RelationField{
	Services: {
		{Field: FieldSends, Kind: Produces, Targets: Messages},
		{Field: FieldReceives, Kind: Consumes, Targets: Messages},
	},
	Entities: {
		{Field: FieldSends, Kind: Produces, Targets: Messages},
		{Field: FieldReceives, Kind: Consumes, Targets: Messages},
	},
	Policies: {
		{Field: FieldReceives, Kind: TriggeredBy, Targets: []Collection{Events}},
		{Field: FieldSends, Kind: Dispatches, Targets: []Collection{Commands}},
	},
	Views: {
		{Field: FieldSubscribes, Kind: Subscribes, Targets: []Collection{Events}},
		{Field: FieldInforms, Kind: Informs, Targets: []Collection{Actors}},
	},
	Actors: {
		{Field: FieldReads, Kind: Reads, Targets: []Collection{Views}},
		{Field: FieldIssues, Kind: Issues, Targets: []Collection{Commands}},
	},
}

// Schema returns the relationship fields of a collection. Collections that do
// not take part in the relationship graph return nil.
func Schema(c Collection) []RelationField {
	return schema[c]
}

// Relation is a single raw relationship edge of a record.
type Relation struct {
	Kind   RelationKind
	Field  Field
	Target Reference
}

// Refs returns the raw references stored in field. The result is never nil.
func (e *Entity) Refs(field Field) []Reference {
	var refs []Reference
	switch field {
	case FieldSends:
		refs = e.Data.Sends
	case FieldReceives:
		refs = e.Data.Receives
	case FieldSubscribes:
		refs = e.Data.Subscribes
	case FieldInforms:
		refs = e.Data.Informs
	case FieldReads:
		refs = e.Data.Reads
	case FieldIssues:
		refs = e.Data.Issues
	}
	if refs == nil {
		return []Reference{}
	}
	return refs
}

// Relations flattens the record's relationship arrays using its collection schema.
func (e *Entity) Relations() []Relation {
	var out []Relation
	for _, rf := range Schema(e.Collection) {
		for _, ref := range e.Refs(rf.Field) {
			out = append(out, Relation{Kind: rf.Kind, Field: rf.Field, Target: ref})
		}
	}
	return out
}

// Collects returns the domain membership references for a collection.
func (d Data) Collects(c Collection) []Reference {
	switch c {
	case Services:
		return d.Services
	case Entities:
		return d.Entities
	case Policies:
		return d.Policies
	case Views:
		return d.Views
	}
	return nil
}
