package postgres

import (
	"context"
	"database/sql"

	"busgallery/internal/model"
	"busgallery/internal/repository"
)

// CatalogPostgres serves the category → model → bus hierarchy.
type CatalogPostgres struct {
	db *sql.DB
}

func NewCatalogPostgres(db *sql.DB) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

var _ repository.CatalogRepository = (*CatalogPostgres)(nil)

func (r *CatalogPostgres) ListCategories(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, title FROM categories ORDER BY title, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogPostgres) ListModels(ctx context.Context, categoryID string) ([]model.BusModel, error) {
	const q = `SELECT id, title, category_id FROM bus_models WHERE category_id = $1 ORDER BY title, id`
	rows, err := r.db.QueryContext(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BusModel, 0)
	for rows.Next() {
		var (
			m     model.BusModel
			catID string
		)
		if err := rows.Scan(&m.ID, &m.Title, &catID); err != nil {
			return nil, err
		}
		m.ParentCategory = model.NewReference(catID)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *CatalogPostgres) ListBuses(ctx context.Context, modelID string) ([]model.Bus, error) {
	const q = `SELECT id, serial_number, model_id FROM buses WHERE model_id = $1 ORDER BY serial_number, id`
	rows, err := r.db.QueryContext(ctx, q, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Bus, 0)
	for rows.Next() {
		var (
			b   model.Bus
			mID string
		)
		if err := rows.Scan(&b.ID, &b.SerialNumber, &mID); err != nil {
			return nil, err
		}
		b.Model = model.NewReference(mID)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *CatalogPostgres) ListBusSummaries(ctx context.Context) ([]model.BusSummary, error) {
	const q = `
		SELECT b.id, b.serial_number, COALESCE(m.title, '')
		FROM buses b
		LEFT JOIN bus_models m ON m.id = b.model_id
		ORDER BY m.title, b.serial_number, b.id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BusSummary, 0)
	for rows.Next() {
		var s model.BusSummary
		if err := rows.Scan(&s.ID, &s.SerialNumber, &s.Model.Title); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
