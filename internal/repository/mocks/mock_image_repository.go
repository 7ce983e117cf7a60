package mocks

import (
	"context"

	"busgallery/internal/model"
	"busgallery/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, img *model.BusImage) (*model.BusImage, error) {
	args := m.Called(ctx, img)
	if f, ok := args.Get(0).(func(context.Context, *model.BusImage) *model.BusImage); ok {
		return f(ctx, img), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusImage), args.Error(1)
}

func (m *MockImageRepository) MarkReady(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockImageRepository) ListByBus(ctx context.Context, busID string, pq repository.PageQuery) (*repository.PageResult[model.BusImage], error) {
	args := m.Called(ctx, busID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.BusImage]), args.Error(1)
}
