package catalog

import (
	"strings"
)

// Provider supplies a named, versioned question set. Additional providers
// are passed explicitly at construction; nothing is loaded lazily.
type Provider interface {
	Version() string
	Questions() []Question
}

// Catalog is the resolved, read-only question collection a router works
// from. It is built once per process and safe for concurrent reads.
type Catalog struct {
	version   string
	questions []Question
	byID      map[string]Question
}

// New resolves the given providers into a catalog. Later providers cannot
// shadow an id an earlier provider already claimed.
func New(providers ...Provider) *Catalog {
	c := &Catalog{byID: make(map[string]Question)}
	versions := make([]string, 0, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		versions = append(versions, p.Version())
		for _, q := range p.Questions() {
			if q.ID == "" {
				continue
			}
			if _, exists := c.byID[q.ID]; exists {
				continue
			}
			c.byID[q.ID] = q
			c.questions = append(c.questions, q)
		}
	}
	c.version = strings.Join(versions, "+")
	return c
}

// Default returns the catalog built from the built-in question set only.
func Default() *Catalog {
	return New(BuiltinProvider{})
}

// Version identifies the resolved provider set.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// Questions returns a copy of the resolved question list.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Get looks a question up by id.
func (c *Catalog) Get(id string) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}
