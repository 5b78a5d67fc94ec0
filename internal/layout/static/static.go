// Package static carries the built-in slot layouts. They ship inside the
// binary so slots mode and the auto fallback work with no database and no
// network; an env override lets operators swap the file without a rebuild.
package static

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

const staticLayoutsEnv = "LAYOUT_STATIC_YAML"

//go:embed layouts.yaml
var layoutsFS embed.FS

type yamlFile struct {
	Version int         `yaml:"version"`
	Layouts []yamlEntry `yaml:"layouts"`
}

type yamlEntry struct {
	Page       string         `yaml:"page"`
	EntityType string         `yaml:"entityType"`
	Document   map[string]any `yaml:"document"`
}

type pageLayout struct {
	entityType string
	doc        *layout.Document
}

// Catalog holds the validated built-in layouts, keyed by page.
type Catalog struct {
	log     *logger.Logger
	once    sync.Once
	byPage  map[string]pageLayout
	loadErr error
}

func NewCatalog(log *logger.Logger) *Catalog {
	return &Catalog{log: log.With("component", "layout.static")}
}

// SlotDocument returns a copy of the built-in layout for page. Callers get
// their own clone; rendered pages must never share mutable props with the
// catalog.
func (c *Catalog) SlotDocument(page, entityType string) (*layout.Document, bool) {
	c.load()
	entry, ok := c.byPage[page]
	if !ok {
		return nil, false
	}
	if entry.entityType != "" && entityType != "" && entry.entityType != entityType {
		return nil, false
	}
	return entry.doc.Clone(), true
}

// Pages lists every page with a built-in layout, sorted.
func (c *Catalog) Pages() []string {
	c.load()
	out := make([]string, 0, len(c.byPage))
	for p := range c.byPage {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SeedDocuments returns clones of the built-in documents keyed by page, used
// to seed the schema store on first boot.
func (c *Catalog) SeedDocuments() map[string]*layout.Document {
	c.load()
	out := make(map[string]*layout.Document, len(c.byPage))
	for page, entry := range c.byPage {
		out[page] = entry.doc.Clone()
	}
	return out
}

func (c *Catalog) load() {
	c.once.Do(func() {
		c.byPage, c.loadErr = parseLayouts(readLayoutsYAML())
		if c.loadErr != nil {
			c.log.Error("built-in layouts failed to load", "error", c.loadErr)
			c.byPage = map[string]pageLayout{}
			return
		}
		c.log.Info("built-in layouts loaded", "pages", len(c.byPage))
	})
}

func readLayoutsYAML() []byte {
	if path := strings.TrimSpace(os.Getenv(staticLayoutsEnv)); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return data
		}
	}
	data, err := layoutsFS.ReadFile("layouts.yaml")
	if err != nil {
		return nil
	}
	return data
}

func parseLayouts(data []byte) (map[string]pageLayout, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("static: layouts.yaml is empty")
	}
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("static: parse layouts.yaml: %w", err)
	}

	out := make(map[string]pageLayout, len(file.Layouts))
	for _, entry := range file.Layouts {
		page := strings.TrimSpace(entry.Page)
		if page == "" {
			return nil, fmt.Errorf("static: layout entry missing page")
		}
		if _, dup := out[page]; dup {
			return nil, fmt.Errorf("static: duplicate layout for page %s", page)
		}
		doc, errs := layout.Validate(entry.Document)
		if len(errs) > 0 {
			return nil, fmt.Errorf("static: layout for page %s: %w", page, errs)
		}
		out[page] = pageLayout{entityType: strings.TrimSpace(entry.EntityType), doc: doc}
	}
	return out, nil
}
