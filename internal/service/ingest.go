package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"busgallery/internal/logger"
	"busgallery/internal/model"
	"busgallery/internal/repository"
	"busgallery/internal/storage"
)

var (
	ErrBusIDRequired = errors.New("busId is required")
	ErrNoFiles       = errors.New("no files in upload")
)

// tokenNamespace scopes the per-file idempotency tokens derived from a batch key.
var tokenNamespace = uuid.MustParse("6f1c2b0e-4c8a-5d7e-9a3b-2e5f8d1c0b47")

const assetPrefix = "images/"

var tracer = otel.Tracer("busgallery/internal/service")

// CommitError reports the file whose commit stopped the batch. Documents committed
// before it are kept.
type CommitError struct {
	Index     int
	Filename  string
	Committed int
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit file %d (%s): %v", e.Index, e.Filename, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// IngestRequest is one validated upload: the target bus and the spooled file parts.
type IngestRequest struct {
	BusID string
	// BatchKey is the client's retry key. Empty means a fresh batch.
	BatchKey string
	Files    []model.FileEntry
}

// IngestService turns uploaded files into stored assets plus busImage documents.
type IngestService interface {
	// Ingest commits every file in order: asset upload, then document creation.
	// It returns the created documents in commit order, or a *CommitError on the
	// first failing file.
	Ingest(ctx context.Context, req IngestRequest) ([]model.BusImage, error)
}

type ingestService struct {
	store   storage.Storage
	repo    repository.ImageRepository
	metrics *IngestMetrics
	workers int
	now     func() time.Time
}

// NewIngestService constructs an IngestService. workers bounds concurrent commits;
// values below 2 commit strictly one file after another. metrics may be nil.
func NewIngestService(store storage.Storage, repo repository.ImageRepository, metrics *IngestMetrics, workers int) IngestService {
	if workers < 1 {
		workers = 1
	}
	return &ingestService{
		store:   store,
		repo:    repo,
		metrics: metrics,
		workers: workers,
		now:     time.Now,
	}
}

func (s *ingestService) Ingest(ctx context.Context, req IngestRequest) ([]model.BusImage, error) {
	if req.BusID == "" {
		return nil, ErrBusIDRequired
	}
	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}
	batchKey := req.BatchKey
	if batchKey == "" {
		batchKey = uuid.NewString()
	}

	images := make([]model.BusImage, len(req.Files))
	var (
		mu        sync.Mutex
		committed int
		failure   *CommitError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range req.Files {
		i, f := i, f
		g.Go(func() error {
			// A failed sibling cancels gctx; files not yet started are skipped.
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := s.commit(gctx, req.BusID, batchKey, i, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if failure == nil || i < failure.Index {
					failure = &CommitError{Index: i, Filename: f.Filename, Err: err}
				}
				return err
			}
			images[i] = *img
			committed++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if failure == nil {
			// Parent context cancelled before any file failed.
			failure = &CommitError{Index: committed, Err: err}
		}
		failure.Committed = committed
		s.metrics.observe(false, committed)
		logger.Error(ctx, "ingest failed", failure, logger.Fields{
			"bus_id":    req.BusID,
			"batch_key": batchKey,
			"committed": committed,
			"files":     len(req.Files),
		})
		return nil, failure
	}

	ids := make([]string, len(images))
	for i := range images {
		ids[i] = images[i].ID
	}
	if err := s.repo.MarkReady(ctx, ids); err != nil {
		s.metrics.observe(false, committed)
		return nil, &CommitError{Index: len(images), Committed: committed, Err: fmt.Errorf("finalize batch: %w", err)}
	}
	for i := range images {
		images[i].Status = model.StatusReady
	}

	s.metrics.observe(true, committed)
	logger.Info(ctx, "ingest completed", logger.Fields{
		"bus_id":    req.BusID,
		"batch_key": batchKey,
		"files":     len(images),
	})
	return images, nil
}

// commit stores one file's bytes and then its document. A document is only
// created after its asset upload succeeded.
func (s *ingestService) commit(ctx context.Context, busID, batchKey string, index int, f model.FileEntry) (img *model.BusImage, err error) {
	ctx, span := tracer.Start(ctx, "ingest.commit", trace.WithAttributes(
		attribute.Int("file.index", index),
		attribute.String("file.name", f.Filename),
		attribute.Int64("file.size", f.Size),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "commit failed")
		}
		span.End()
	}()

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read spooled file: %w", err)
	}

	token := FileToken(busID, batchKey, index, f.Filename)
	key := AssetKey(token, f.Filename)

	obj, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: assetContentType(f.ContentType, data),
		Metadata: map[string]string{
			storage.MetaOriginalFilename: f.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload asset: %w", err)
	}

	doc := &model.BusImage{
		ID:         token,
		Type:       model.TypeBusImage,
		Bus:        model.NewReference(busID),
		Label:      Label(f.Filename),
		Image:      model.ImageField{Type: model.TypeImage, Asset: model.NewReference(obj.Key)},
		UploadDate: s.now().UTC(),
		Status:     model.StatusPending,
		BatchKey:   batchKey,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return stored, nil
}

// FileToken is the idempotency token of one file of a batch. The same bus, batch key,
// position and filename always produce the same token. A batch key reused for another
// bus yields different tokens, so it never resolves to the first bus's documents.
func FileToken(busID, batchKey string, index int, filename string) string {
	return uuid.NewSHA1(tokenNamespace, []byte(busID+"/"+batchKey+"/"+strconv.Itoa(index)+"/"+filename)).String()
}

// AssetKey is the object key for a file's bytes.
func AssetKey(token, filename string) string {
	return assetPrefix + token + strings.ToLower(path.Ext(filename))
}

// Label is the filename with its last extension removed.
func Label(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename))
}

func assetContentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}
