package mocks

import (
	"context"

	"busgallery/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCatalogRepository) ListModels(ctx context.Context, categoryID string) ([]model.BusModel, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusModel), args.Error(1)
}

func (m *MockCatalogRepository) ListBuses(ctx context.Context, modelID string) ([]model.Bus, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Bus), args.Error(1)
}

func (m *MockCatalogRepository) ListBusSummaries(ctx context.Context) ([]model.BusSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusSummary), args.Error(1)
}
