// Package content holds the static study material served by the site and
// the catalog the rest of the app reads it through. The catalog is built and
// validated once at startup; it is never modified afterwards.
package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/stemsi/sitesafe-learn/internal/model"
	"github.com/stemsi/sitesafe-learn/internal/quiz"
)

//go:embed pages/*.json
var pagesFS embed.FS

// Catalog errors.
var (
	ErrInvalidContent = errors.New("invalid content")
	ErrDuplicatePage  = errors.New("duplicate page slug")
	ErrPageNotFound   = errors.New("page not found")
	ErrCheckNotFound  = errors.New("inline check not found")
	ErrNoQuiz         = errors.New("page has no quiz")
)

// Catalog is a read-only index of validated pages.
type Catalog struct {
	pages map[string]*model.Page
	order []string
}

// Embedded loads the catalog compiled into the binary.
func Embedded() (*Catalog, error) {
	return Load(pagesFS)
}

// EmbeddedPages decodes the compiled-in pages without building a catalog.
func EmbeddedPages() ([]model.Page, error) {
	return readPages(pagesFS)
}

// Load decodes every pages/*.json document in fsys and builds a catalog.
func Load(fsys fs.FS) (*Catalog, error) {
	pages, err := readPages(fsys)
	if err != nil {
		return nil, err
	}
	return FromPages(pages)
}

// FromPages validates pages and builds a catalog from them.
func FromPages(pages []model.Page) (*Catalog, error) {
	v := newValidator()
	c := &Catalog{pages: make(map[string]*model.Page, len(pages))}

	for i := range pages {
		p := pages[i]
		if err := ValidatePage(v, &p); err != nil {
			return nil, err
		}
		if _, dup := c.pages[p.Slug]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePage, p.Slug)
		}
		c.pages[p.Slug] = &p
		c.order = append(c.order, p.Slug)
	}

	sort.SliceStable(c.order, func(i, j int) bool {
		a, b := c.pages[c.order[i]], c.pages[c.order[j]]
		if a.Kind != b.Kind {
			return a.Kind == model.PageKindModule
		}
		return a.Title < b.Title
	})
	return c, nil
}

func readPages(fsys fs.FS) ([]model.Page, error) {
	names, err := fs.Glob(fsys, "pages/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make([]model.Page, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var p model.Page
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidContent, name, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// Len returns the number of pages.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Page returns the page with the given slug.
func (c *Catalog) Page(slug string) (*model.Page, error) {
	p, ok := c.pages[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}
	return p, nil
}

// Pages returns all pages, modules first, each group ordered by title.
func (c *Catalog) Pages() []*model.Page {
	out := make([]*model.Page, len(c.order))
	for i, slug := range c.order {
		out[i] = c.pages[slug]
	}
	return out
}

// Summaries returns listing entries in catalog order.
func (c *Catalog) Summaries() []model.PageSummary {
	out := make([]model.PageSummary, len(c.order))
	for i, slug := range c.order {
		out[i] = c.pages[slug].Listing()
	}
	return out
}

// Check returns the InlineCheck question of one section.
func (c *Catalog) Check(slug, sectionID string) (quiz.Question, error) {
	p, err := c.Page(slug)
	if err != nil {
		return quiz.Question{}, err
	}
	sec, ok := p.Section(sectionID)
	if !ok || sec.Check == nil {
		return quiz.Question{}, fmt.Errorf("%w: %s/%s", ErrCheckNotFound, slug, sectionID)
	}
	return sec.Check.Engine(), nil
}

// NewQuiz builds a fresh quiz for the page.
func (c *Catalog) NewQuiz(slug string) (*quiz.Quiz, error) {
	p, err := c.Page(slug)
	if err != nil {
		return nil, err
	}
	if p.Quiz == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoQuiz, slug)
	}
	return quiz.NewQuiz(p.Quiz.Title, engineQuestions(p.Quiz.Questions))
}
