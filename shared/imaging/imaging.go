package imaging

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"estate/config"
	"estate/infras/otel"
	"estate/infras/s3"
	"estate/shared/constant"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName = "imaging"
)

// RefCounter reports how many rows of one entity kind reference an image URL.
// Reference counting is by exact path equality.
type RefCounter interface {
	CountByImage(ctx context.Context, imageURL string) (int, error)
}

// Helper implements the image handling contract shared by every entity with
// an image column. Upload and Release are separate steps so callers release
// the old blob only after the database row points elsewhere: an orphaned
// blob is acceptable, a dangling reference is not.
type Helper interface {
	Upload(ctx context.Context, directory string, file multipart.File, header *multipart.FileHeader) (string, error)
	Release(ctx context.Context, refs RefCounter, currentURL string)
	Placeholder() string
}

type helperImpl struct {
	blob s3.S3
	cfg  *config.Config
	otel otel.Otel
}

func New(blob s3.S3, cfg *config.Config, otel otel.Otel) Helper {
	return &helperImpl{
		blob: blob,
		cfg:  cfg,
		otel: otel,
	}
}

// Upload stores the file under directory with a generated name and returns
// its URL.
func (h *helperImpl) Upload(ctx context.Context, directory string, file multipart.File, header *multipart.FileHeader) (url string, err error) {
	ctx, scope := h.otel.NewScope(ctx, otelScopeName, otelScopeName+".Upload")
	defer scope.End()
	defer scope.TraceIfError(err)

	fileName := uuid.NewString() + filepath.Ext(header.Filename)

	url, err = h.blob.UploadFile(ctx, constant.Empty, directory, file, header, fileName)
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to upload image: %w", err)
	}

	return url, nil
}

// Release deletes the blob when no other row still references it. Best
// effort: failures only log, and the caller must have already persisted the
// row that stopped referencing currentURL.
func (h *helperImpl) Release(ctx context.Context, refs RefCounter, currentURL string) {
	ctx, scope := h.otel.NewScope(ctx, otelScopeName, otelScopeName+".Release")
	defer scope.End()

	if currentURL == constant.Empty || currentURL == constant.ImagePlaceholder {
		return
	}

	count, err := refs.CountByImage(ctx, currentURL)
	if err != nil {
		log.Error().Err(err).Str("image", currentURL).Msg("failed to count image references, keeping blob")

		return
	}

	if count > 0 {
		return
	}

	bucket := h.cfg.External.S3.BucketName

	objectName := h.blob.GetObjectNameFromURL(bucket, currentURL)
	if objectName == constant.Empty {
		log.Warn().Str("image", currentURL).Msg("image URL does not belong to the configured bucket, keeping blob")

		return
	}

	if err := h.blob.DeleteFile(ctx, bucket, constant.Empty, objectName); err != nil {
		log.Error().Err(err).Str("image", currentURL).Msg("failed to delete orphaned image blob")
	}
}

func (h *helperImpl) Placeholder() string {
	return constant.ImagePlaceholder
}
