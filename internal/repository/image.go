package repository

import (
	"context"

	"busgallery/internal/model"
)

// ImageRepository is the document store for busImage documents.
// Persistence only; no business logic.
type ImageRepository interface {
	// Create inserts a busImage document. Creating an id that already exists returns the
	// stored document unchanged, so a retried commit does not duplicate documents.
	Create(ctx context.Context, img *model.BusImage) (*model.BusImage, error)

	// MarkReady flips the given documents from pending to ready.
	MarkReady(ctx context.Context, ids []string) error

	// ListByBus returns ready images referencing the bus, oldest first.
	ListByBus(ctx context.Context, busID string, pq PageQuery) (*PageResult[model.BusImage], error)
}

// CatalogRepository serves the read-only browse hierarchy.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListModels(ctx context.Context, categoryID string) ([]model.BusModel, error)
	ListBuses(ctx context.Context, modelID string) ([]model.Bus, error)
	// ListBusSummaries returns every bus with its model title for the upload picker.
	ListBusSummaries(ctx context.Context) ([]model.BusSummary, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
