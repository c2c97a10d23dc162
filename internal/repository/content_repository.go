package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/sitesafe-learn/internal/model"
)

// ContentRepository handles page document access.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// ListPages retrieves every stored page, ordered by slug.
func (r *ContentRepository) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT slug, document, updated_at FROM pages ORDER BY slug`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// GetPage retrieves a page by slug. Returns pgx.ErrNoRows when absent.
func (r *ContentRepository) GetPage(ctx context.Context, slug string) (*model.Page, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT slug, document, updated_at FROM pages WHERE slug = $1`, slug,
	)
	return scanPage(row)
}

// UpsertPages writes all pages in one transaction.
func (r *ContentRepository) UpsertPages(ctx context.Context, pages []model.Page) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range pages {
			p := pages[i]
			p.UpdatedAt = nil

			doc, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode page %s: %w", p.Slug, err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO pages (slug, kind, title, document)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (slug) DO UPDATE
				 SET kind = EXCLUDED.kind, title = EXCLUDED.title,
				     document = EXCLUDED.document, updated_at = NOW()`,
				p.Slug, string(p.Kind), p.Title, doc,
			)
			if err != nil {
				return fmt.Errorf("upsert page %s: %w", p.Slug, err)
			}
		}
		return nil
	})
}

// DeletePagesExcept removes every page whose slug is not in keep.
func (r *ContentRepository) DeletePagesExcept(ctx context.Context, keep []string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM pages WHERE NOT (slug = ANY($1))`, keep,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPage(row pgx.Row) (*model.Page, error) {
	var (
		slug      string
		doc       []byte
		updatedAt time.Time
	)
	if err := row.Scan(&slug, &doc, &updatedAt); err != nil {
		return nil, err
	}

	p := &model.Page{}
	if err := json.Unmarshal(doc, p); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", slug, err)
	}
	p.Slug = slug
	p.UpdatedAt = &updatedAt
	return p, nil
}
