package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"

	"busgallery/internal/logger"
	"busgallery/internal/model"
	"busgallery/internal/service"
	"busgallery/internal/upload"
)

// UploadOptions bounds the ingestion endpoint.
type UploadOptions struct {
	MaxFileSize  int64
	MaxTotalSize int64
	// TempDir receives spooled file parts; empty means the OS default.
	TempDir string
}

func (o UploadOptions) limits() upload.Limits {
	return upload.Limits{MaxFileSize: o.MaxFileSize, MaxTotalSize: o.MaxTotalSize}
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("Uploaded files exceed the %s server limit. If you are using a constrained hosting environment, try a file under 100MB.", humanize.IBytes(uint64(limit)))
}

type uploadResult struct {
	Success bool             `json:"success"`
	Images  []model.BusImage `json:"images"`
}

// UploadBusImages godoc
// @Summary Upload bus images
// @Description Streams a multipart body (busId, optional batchKey, one or more files) and stores each file as an asset plus a busImage document.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param busId formData string true "Target bus id"
// @Param batchKey formData string false "Client retry key"
// @Param files formData file true "Image files"
// @Success 200 {object} uploadResult
// @Failure 400 {object} errorPayload
// @Failure 405 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/uploadBusImages [post]
func UploadBusImages(svc service.IngestService, opts UploadOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return writeError(c, fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		}
		ctx := c.UserContext()

		form, err := parseForm(c, opts)
		if err != nil {
			if errors.Is(err, upload.ErrLimitExceeded) {
				limit := opts.MaxTotalSize
				if errors.Is(err, upload.ErrFileTooLarge) {
					limit = opts.MaxFileSize
				}
				logger.Warn(ctx, "upload rejected", logger.Fields{"reason": err.Error()})
				return writeError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", tooLargeMessage(limit))
			}
			logger.Error(ctx, "multipart parse failed", err)
			return writeError(c, fiber.StatusInternalServerError, "PARSE_ERROR", "File parsing error. "+err.Error())
		}
		defer form.Cleanup()

		busID := form.Value("busId")
		if busID == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_BUS_ID", "Missing busId")
		}
		files := form.Files["files"]
		if len(files) == 0 {
			return writeError(c, fiber.StatusBadRequest, "NO_FILES", "No files found in upload.")
		}

		images, err := svc.Ingest(ctx, service.IngestRequest{
			BusID:    busID,
			BatchKey: form.Value("batchKey"),
			Files:    files,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrBusIDRequired):
				return writeError(c, fiber.StatusBadRequest, "MISSING_BUS_ID", "Missing busId")
			case errors.Is(err, service.ErrNoFiles):
				return writeError(c, fiber.StatusBadRequest, "NO_FILES", "No files found in upload.")
			}
			return writeError(c, fiber.StatusInternalServerError, "COMMIT_FAILED", "Failed to upload images. Try again.")
		}

		return c.JSON(uploadResult{Success: true, Images: images})
	}
}

// parseForm streams the request body through the multipart parser. Bodies that are
// not multipart yield an empty form so validation reports what is missing.
func parseForm(c *fiber.Ctx, opts UploadOptions) (*upload.Form, error) {
	boundary := upload.Boundary(c.Get(fiber.HeaderContentType))
	if boundary == "" {
		return &upload.Form{}, nil
	}

	var body io.Reader = c.Context().RequestBodyStream()
	if body == nil {
		body = bytes.NewReader(c.Body())
	}
	return upload.Parse(body, boundary, opts.limits(), opts.TempDir)
}
