package service

import (
	"github.com/stemsi/sitesafe-learn/internal/content"
	"github.com/stemsi/sitesafe-learn/internal/model"
)

// PageService serves read-only catalog lookups.
type PageService struct {
	catalog *content.Catalog
}

// NewPageService creates a new PageService.
func NewPageService(catalog *content.Catalog) *PageService {
	return &PageService{catalog: catalog}
}

// List returns every page summary in catalog order.
func (s *PageService) List() []model.PageSummary {
	return s.catalog.Summaries()
}

// Get returns a page by slug.
func (s *PageService) Get(slug string) (*model.Page, error) {
	return s.catalog.Page(slug)
}
