package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"eventdocs/internal/catalog"
	"eventdocs/internal/version"
)

var validate = validator.New()

// entryFiles define a record in its own folder.
var entryFiles = map[string]bool{"index.mdx": true, "index.md": true}

// flatCollections are authored as one unversioned file per record directly in
// the collection directory, e.g. teams/full-stack.md.
var flatCollections = map[catalog.Collection]bool{catalog.Teams: true, catalog.Users: true}

// frontmatter is the YAML header of an entry file.
type frontmatter struct {
	ID      string `yaml:"id" validate:"required"`
	Version string `yaml:"version" validate:"required"`
	Name    string `yaml:"name"`
	Summary string `yaml:"summary"`
	Hidden  bool   `yaml:"hidden"`

	catalog.Data `yaml:",inline"`
}

// Problem is an entry file that could not be turned into a record.
type Problem struct {
	Path string
	Err  error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// Crawler scans a catalog project for entry files.
type Crawler struct {
	ignored []string
	logger  *zap.Logger
}

// NewCrawler creates a new crawler instance.
func NewCrawler(logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		ignored: []string{".git", "node_modules", "dist", ".eventcatalog-core"},
		logger:  logger,
	}
}

// ScanProject walks root and streams every valid record to onRecord. Files
// that fail to parse are reported to onProblem and skipped.
func (c *Crawler) ScanProject(root string, onRecord func(rec *catalog.Entity, folder string), onProblem func(Problem)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, flat := flatEntry(rel); !flat && !entryFiles[d.Name()] {
			return nil
		}

		rec, folder, err := readEntry(path, rel)
		if err != nil {
			c.logger.Warn("skipping entry", zap.String("path", rel), zap.Error(err))
			if onProblem != nil {
				onProblem(Problem{Path: rel, Err: err})
			}
			return nil
		}
		if rec == nil {
			return nil
		}
		onRecord(rec, folder)
		return nil
	})
}

// Scan walks root and collects every record into a Catalog.
func (c *Crawler) Scan(root string) (*Catalog, error) {
	cat := newCatalog(root)
	err := c.ScanProject(root, cat.add, func(p Problem) {
		cat.problems = append(cat.problems, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	c.logger.Info("catalog scanned",
		zap.String("root", root),
		zap.Int("records", cat.Len()),
		zap.Int("problems", len(cat.problems)),
	)
	return cat, nil
}

var errNoCollection = errors.New("not inside a collection directory")

// readEntry parses one entry file. Files without frontmatter yield a nil
// record and no error.
func readEntry(path, rel string) (*catalog.Entity, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	header, ok := splitFrontmatter(raw)
	if !ok {
		return nil, "", nil
	}

	col, entryID, folder, ok := locate(rel)
	if !ok {
		return nil, "", errNoCollection
	}

	var fm frontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return nil, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	if flatCollections[col] {
		err = validate.StructExcept(fm, "Version")
	} else {
		err = validate.Struct(fm)
	}
	if err != nil {
		return nil, "", fmt.Errorf("invalid frontmatter: %w", err)
	}

	return &catalog.Entity{
		ID:         fm.ID,
		Version:    fm.Version,
		Collection: col,
		Name:       fm.Name,
		Summary:    fm.Summary,
		Hidden:     fm.Hidden,
		EntryID:    entryID,
		FilePath:   path,
		Data:       fm.Data,
	}, folder, nil
}

// splitFrontmatter returns the YAML between the leading "---" fences.
func splitFrontmatter(raw []byte) ([]byte, bool) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return nil, false
	}
	rest := raw[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, false
	}
	return rest[:end+1], true
}

// locate finds the nearest ancestor directory named after a collection. The
// entry id is the path below it and the folder is the first directory below
// it, e.g. services/OrderService/versioned/0.0.1/index.mdx gives services,
// "OrderService/versioned/0.0.1/index.mdx" and "OrderService".
func locate(rel string) (catalog.Collection, string, string, bool) {
	if col, ok := flatEntry(rel); ok {
		name := path.Base(rel)
		return col, name, strings.TrimSuffix(name, path.Ext(name)), true
	}
	parts := strings.Split(rel, "/")
	// the last part is the file and the one before it is the record's own folder
	for i := len(parts) - 3; i >= 0; i-- {
		col, ok := catalog.ParseCollection(parts[i])
		if !ok {
			continue
		}
		return col, strings.Join(parts[i+1:], "/"), parts[i+1], true
	}
	return "", "", "", false
}

// flatEntry reports whether rel is a markdown file directly inside a flat
// collection directory.
func flatEntry(rel string) (catalog.Collection, bool) {
	switch path.Ext(rel) {
	case ".md", ".mdx":
	default:
		return "", false
	}
	col, ok := catalog.ParseCollection(path.Base(path.Dir(rel)))
	if !ok || !flatCollections[col] {
		return "", false
	}
	return col, true
}

// Catalog is the result of one scan. It serves records by collection and the
// folder each record was authored in.
type Catalog struct {
	root string

	mu       sync.RWMutex
	records  map[catalog.Collection][]*catalog.Entity
	seen     map[string]bool
	folders  map[string]map[string]string // id -> version -> folder
	problems []Problem
}

func newCatalog(root string) *Catalog {
	return &Catalog{
		root:    root,
		records: make(map[catalog.Collection][]*catalog.Entity),
		seen:    make(map[string]bool),
		folders: make(map[string]map[string]string),
	}
}

func (c *Catalog) add(rec *catalog.Entity, folder string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := string(rec.Collection) + "/" + rec.Key()
	if c.seen[key] {
		c.problems = append(c.problems, Problem{
			Path: rec.EntryID,
			Err:  fmt.Errorf("duplicate %s %s", rec.Collection.Singular(), rec.Key()),
		})
		return
	}
	c.seen[key] = true
	c.records[rec.Collection] = append(c.records[rec.Collection], rec)

	if c.folders[rec.ID] == nil {
		c.folders[rec.ID] = make(map[string]string)
	}
	c.folders[rec.ID][rec.Version] = folder
}

// Collection implements pipeline.Source.
func (c *Catalog) Collection(ctx context.Context, col catalog.Collection) ([]*catalog.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*catalog.Entity, len(c.records[col]))
	copy(out, c.records[col])
	return out, nil
}

// FolderName implements pipeline.FolderResolver. An unversioned lookup returns
// the folder of the latest version.
func (c *Catalog) FolderName(projectDir, id, ver string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byVersion := c.folders[id]
	if len(byVersion) == 0 {
		return "", nil
	}
	if !version.IsLatest(ver) {
		return byVersion[ver], nil
	}
	latest := ""
	for v := range byVersion {
		if latest == "" || version.Compare(v, latest) > 0 {
			latest = v
		}
	}
	return byVersion[latest], nil
}

// Records returns a copy of every collection.
func (c *Catalog) Records() map[catalog.Collection][]*catalog.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[catalog.Collection][]*catalog.Entity, len(c.records))
	for col, items := range c.records {
		out[col] = append([]*catalog.Entity(nil), items...)
	}
	return out
}

func (c *Catalog) Problems() []Problem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Problem(nil), c.problems...)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, items := range c.records {
		n += len(items)
	}
	return n
}

func (c *Catalog) Root() string {
	return c.root
}
