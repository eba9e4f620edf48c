package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type Collection string

const (
	Events       Collection = "events"
	Commands     Collection = "commands"
	Queries      Collection = "queries"
	Services     Collection = "services"
	Domains      Collection = "domains"
	Flows        Collection = "flows"
	Channels     Collection = "channels"
	Entities     Collection = "entities"
	Policies     Collection = "policies"
	Views        Collection = "views"
	Actors       Collection = "actors"
	Containers   Collection = "containers"
	Diagrams     Collection = "diagrams"
	Teams        Collection = "teams"
	Users        Collection = "users"
	DataProducts Collection = "data-products"
)

// All lists every collection the content layer can serve.
var All = []Collection{
	Events, Commands, Queries, Services, Domains, Flows, Channels, Entities,
	Policies, Views, Actors, Containers, Diagrams, Teams, Users, DataProducts,
}

// Messages are the collections a service or entity can send and receive.
var Messages = []Collection{Events, Commands, Queries}

func ParseCollection(s string) (Collection, bool) {
	for _, c := range All {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

var singular = map[Collection]string{
	Events: "event", Commands: "command", Queries: "query", Services: "service",
	Domains: "domain", Flows: "flow", Channels: "channel", Entities: "entity",
	Policies: "policy", Views: "view", Actors: "actor", Containers: "container",
	Diagrams: "diagram", Teams: "team", Users: "user", DataProducts: "data-product",
}

// Singular is the type name used for a single record, e.g. "policy".
func (c Collection) Singular() string {
	if s, ok := singular[c]; ok {
		return s
	}
	return string(c)
}

func (c Collection) IsMessage() bool {
	return c == Events || c == Commands || c == Queries
}

// Reference points at another record. An empty Version or "latest" means the
// latest member of the target family; anything else is a semver range.
type Reference struct {
	ID      string      `yaml:"id" json:"id" validate:"required"`
	Version string      `yaml:"version,omitempty" json:"version,omitempty"`
	To      []Reference `yaml:"to,omitempty" json:"to,omitempty"`
	From    []Reference `yaml:"from,omitempty" json:"from,omitempty"`
}

func (r Reference) String() string {
	if r.Version == "" {
		return r.ID
	}
	return r.ID + "@" + r.Version
}

// Owner is a team or user reference in frontmatter.
type Owner struct {
	ID string `yaml:"id" json:"id"`
}

// UnmarshalYAML accepts both `- dboyne` and `- id: dboyne`.
func (o *Owner) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.ID = node.Value
		return nil
	}
	type plain Owner
	return node.Decode((*plain)(o))
}

// Data holds the collection specific payload. Fields that do not apply to a
// collection stay empty.
type Data struct {
	Sends      []Reference `yaml:"sends,omitempty" json:"sends,omitempty"`
	Receives   []Reference `yaml:"receives,omitempty" json:"receives,omitempty"`
	Subscribes []Reference `yaml:"subscribes,omitempty" json:"subscribes,omitempty"`
	Informs    []Reference `yaml:"informs,omitempty" json:"informs,omitempty"`
	Reads      []Reference `yaml:"reads,omitempty" json:"reads,omitempty"`
	Issues     []Reference `yaml:"issues,omitempty" json:"issues,omitempty"`

	// domains
	Services []Reference `yaml:"services,omitempty" json:"services,omitempty"`
	Entities []Reference `yaml:"entities,omitempty" json:"entities,omitempty"`
	Policies []Reference `yaml:"policies,omitempty" json:"policies,omitempty"`
	Views    []Reference `yaml:"views,omitempty" json:"views,omitempty"`

	// channels
	Routes    []Reference `yaml:"routes,omitempty" json:"routes,omitempty"`
	Address   string      `yaml:"address,omitempty" json:"address,omitempty"`
	Protocols []string    `yaml:"protocols,omitempty" json:"protocols,omitempty"`

	Owners []Owner `yaml:"owners,omitempty" json:"owners,omitempty"`
	Badges []Badge `yaml:"badges,omitempty" json:"badges,omitempty"`
}

type Badge struct {
	Content string `yaml:"content" json:"content"`
}

// Entity is one versioned record of a collection.
type Entity struct {
	ID         string     `json:"id"`
	Version    string     `json:"version"`
	Collection Collection `json:"collection"`
	Name       string     `json:"name,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Hidden     bool       `json:"hidden,omitempty"`
	EntryID    string     `json:"entryId,omitempty"`
	FilePath   string     `json:"filePath,omitempty"`
	Data       Data       `json:"data"`
}

// Key is the node identity of the record: "{id}-{version}".
func (e *Entity) Key() string {
	return fmt.Sprintf("%s-%s", e.ID, e.Version)
}

// DisplayName falls back to the id when no name was authored.
func (e *Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Same reports whether both records have the same collection, id and version.
func (e *Entity) Same(o *Entity) bool {
	if e == nil || o == nil {
		return false
	}
	return e.Collection == o.Collection && e.ID == o.ID && e.Version == o.Version
}
