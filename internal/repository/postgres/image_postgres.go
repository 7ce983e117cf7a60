package postgres

import (
	"context"
	"database/sql"
	"strings"

	"busgallery/internal/model"
	"busgallery/internal/repository"
)

// ImagePostgres is a PostgreSQL implementation of repository.ImageRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ImagePostgres struct {
	db *sql.DB
}

// NewImagePostgres creates a new ImagePostgres repository.
func NewImagePostgres(db *sql.DB) *ImagePostgres {
	return &ImagePostgres{db: db}
}

var _ repository.ImageRepository = (*ImagePostgres)(nil)

const imageColumns = `id, bus_id, label, asset_ref, upload_date, status, batch_key`

// Create inserts a busImage row and returns the stored record.
// On an id conflict the existing row is returned as-is.
func (r *ImagePostgres) Create(ctx context.Context, img *model.BusImage) (*model.BusImage, error) {
	const q = `
		INSERT INTO bus_images (` + imageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING ` + imageColumns
	row := r.db.QueryRowContext(ctx, q,
		img.ID,
		img.Bus.Ref,
		img.Label,
		img.AssetRef(),
		img.UploadDate,
		img.Status,
		img.BatchKey,
	)
	return scanImage(row)
}

// MarkReady sets status=ready on every listed id.
func (r *ImagePostgres) MarkReady(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `UPDATE bus_images SET status = $1 WHERE id = ANY($2::text[])`
	// ids are uuids, so a plain array literal is safe.
	arrayLiteral := "{" + strings.Join(ids, ",") + "}"
	_, err := r.db.ExecContext(ctx, q, model.StatusReady, arrayLiteral)
	return err
}

// ListByBus returns ready images for one bus using LIMIT/OFFSET pagination and a total count.
func (r *ImagePostgres) ListByBus(ctx context.Context, busID string, pq repository.PageQuery) (*repository.PageResult[model.BusImage], error) {
	const qCount = `SELECT COUNT(*) FROM bus_images WHERE bus_id = $1 AND status = $2`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, busID, model.StatusReady).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + imageColumns + `
		FROM bus_images
		WHERE bus_id = $1 AND status = $2
		ORDER BY upload_date ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, busID, model.StatusReady, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.BusImage, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.BusImage]{
		Items: items,
		Total: total,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(s scanner) (*model.BusImage, error) {
	var (
		img      model.BusImage
		busID    string
		assetRef string
	)
	if err := s.Scan(
		&img.ID,
		&busID,
		&img.Label,
		&assetRef,
		&img.UploadDate,
		&img.Status,
		&img.BatchKey,
	); err != nil {
		return nil, err
	}
	img.Type = model.TypeBusImage
	img.Bus = model.NewReference(busID)
	img.Image = model.ImageField{Type: model.TypeImage, Asset: model.NewReference(assetRef)}
	img.UploadDate = img.UploadDate.UTC()
	return &img, nil
}
