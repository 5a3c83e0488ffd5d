package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"ospreyBack/internal/models"
)

var (
	imageVariants = []string{"thumb", "medium", "full", "mobile"}
	imageTypes    = []string{"photo", "before", "after"}
)

type ImageAssetService struct {
	AssetRepo ImageAssetStore
	Bucket    string
	Now       func() time.Time
}

type ImageAssetRequest struct {
	JobID    string `json:"jobId"`
	Filename string `json:"filename"`
	Variant  string `json:"variant"`
	Type     string `json:"type"`
	URL      string `json:"url"`
}

// Register records an uploaded image variant.
func (s *ImageAssetService) Register(ctx context.Context, req ImageAssetRequest) (models.ImageAsset, error) {
	if req.JobID == "" || req.Filename == "" || req.Variant == "" || req.Type == "" || req.URL == "" {
		return models.ImageAsset{}, models.NewValidationError("", "Missing required fields")
	}
	if !slices.Contains(imageVariants, req.Variant) {
		return models.ImageAsset{}, models.NewValidationError("variant", "Unsupported variant")
	}
	if !slices.Contains(imageTypes, req.Type) {
		return models.ImageAsset{}, models.NewValidationError("type", "Unsupported type")
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	asset := models.ImageAsset{
		ID:        uuid.NewString(),
		JobID:     req.JobID,
		Filename:  req.Filename,
		Variant:   req.Variant,
		Type:      req.Type,
		URL:       req.URL,
		Bucket:    s.Bucket,
		CreatedAt: now,
	}
	if err := s.AssetRepo.Upsert(ctx, asset); err != nil {
		return models.ImageAsset{}, err
	}
	return asset, nil
}

func (s *ImageAssetService) ListByJob(ctx context.Context, jobID string) ([]models.ImageAsset, error) {
	return s.AssetRepo.ListByJob(ctx, jobID)
}
