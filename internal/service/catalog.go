package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"busgallery/internal/logger"
	"busgallery/internal/model"
	"busgallery/internal/repository"
	"busgallery/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrInvalidAssetKey = errors.New("invalid asset key")
)

// DefaultPresignTTL is used when the catalog service is built without an expiry.
const DefaultPresignTTL = 15 * time.Minute

// BusListCache caches the bus picker list. Implementations must be safe for
// concurrent use.
type BusListCache interface {
	GetBuses(ctx context.Context) ([]model.BusSummary, bool, error)
	SetBuses(ctx context.Context, buses []model.BusSummary) error
}

// ImageListResult is a page of ready images for one bus.
type ImageListResult struct {
	Items []model.BusImage `json:"images"`
	Total int              `json:"total"`
}

// CatalogService serves the read-only gallery hierarchy.
type CatalogService interface {
	ListBusSummaries(ctx context.Context) ([]model.BusSummary, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListModels(ctx context.Context, categoryID string) ([]model.BusModel, error)
	ListBuses(ctx context.Context, modelID string) ([]model.Bus, error)

	// ListImages returns ready images of a bus with a presigned download URL each.
	ListImages(ctx context.Context, busID string, limit, offset int) (*ImageListResult, error)

	// OpenAsset streams an uploaded image by its asset key.
	OpenAsset(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
}

type catalogService struct {
	repo       repository.CatalogRepository
	images     repository.ImageRepository
	store      storage.Storage
	cache      BusListCache
	presignTTL time.Duration
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(repo repository.CatalogRepository, images repository.ImageRepository, store storage.Storage, cache BusListCache, presignTTL time.Duration) CatalogService {
	if presignTTL <= 0 {
		presignTTL = DefaultPresignTTL
	}
	return &catalogService{
		repo:       repo,
		images:     images,
		store:      store,
		cache:      cache,
		presignTTL: presignTTL,
	}
}

func (s *catalogService) ListBusSummaries(ctx context.Context) ([]model.BusSummary, error) {
	if s.cache != nil {
		buses, ok, err := s.cache.GetBuses(ctx)
		if err != nil {
			logger.Warn(ctx, "bus cache read failed", logger.Fields{"error": err.Error()})
		} else if ok {
			return buses, nil
		}
	}

	buses, err := s.repo.ListBusSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBuses(ctx, buses); err != nil {
			logger.Warn(ctx, "bus cache write failed", logger.Fields{"error": err.Error()})
		}
	}
	return buses, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *catalogService) ListModels(ctx context.Context, categoryID string) ([]model.BusModel, error) {
	if categoryID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListModels(ctx, categoryID)
}

func (s *catalogService) ListBuses(ctx context.Context, modelID string) ([]model.Bus, error) {
	if modelID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListBuses(ctx, modelID)
}

func (s *catalogService) ListImages(ctx context.Context, busID string, limit, offset int) (*ImageListResult, error) {
	if busID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.images.ListByBus(ctx, busID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]model.BusImage, len(res.Items))
	for i, img := range res.Items {
		url, err := s.store.PresignGet(ctx, img.AssetRef(), DownloadName(img.Label, img.AssetRef()), s.presignTTL)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", img.AssetRef(), err)
		}
		img.URL = url
		items[i] = img
	}
	return &ImageListResult{Items: items, Total: res.Total}, nil
}

// DownloadName is the file name offered when an image is downloaded: its label plus
// the asset's extension. Without a label the asset key's base name is used.
func DownloadName(label, assetKey string) string {
	if label == "" {
		return path.Base(assetKey)
	}
	return label + path.Ext(assetKey)
}

func (s *catalogService) OpenAsset(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !strings.HasPrefix(key, assetPrefix) || strings.Contains(key, "..") {
		return nil, storage.ObjectInfo{}, ErrInvalidAssetKey
	}
	return s.store.Get(ctx, key)
}
