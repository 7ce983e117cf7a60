package mocks

import (
	"context"
	"io"

	"busgallery/internal/model"
	"busgallery/internal/service"
	"busgallery/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListBusSummaries(ctx context.Context) ([]model.BusSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusSummary), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCatalogService) ListModels(ctx context.Context, categoryID string) ([]model.BusModel, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusModel), args.Error(1)
}

func (m *MockCatalogService) ListBuses(ctx context.Context, modelID string) ([]model.Bus, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Bus), args.Error(1)
}

func (m *MockCatalogService) ListImages(ctx context.Context, busID string, limit, offset int) (*service.ImageListResult, error) {
	args := m.Called(ctx, busID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImageListResult), args.Error(1)
}

func (m *MockCatalogService) OpenAsset(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
