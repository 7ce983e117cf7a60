package mocks

import (
	"context"

	"busgallery/internal/model"
	"busgallery/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, req service.IngestRequest) ([]model.BusImage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusImage), args.Error(1)
}
