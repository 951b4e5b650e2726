package storage

import (
	"context"

	appconfig "github.com/CelionLigalamu/Nyumba-Hunt/internal/config"
)

type FactoryResult struct {
	Driver  string
	Storage Storage
}

// FromConfig picks S3 when a bucket is configured, local disk otherwise.
func FromConfig(ctx context.Context, cfg *appconfig.Config) (FactoryResult, error) {
	if cfg.S3Bucket == "" {
		return FactoryResult{
			Driver:  "local",
			Storage: NewLocal("./storage/photos", "/photos"),
		}, nil
	}

	prefix := cfg.S3Prefix
	if prefix == "" {
		prefix = "photos"
	}
	s, err := NewS3(ctx, S3Config{
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		Prefix:        prefix,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return FactoryResult{}, err
	}
	return FactoryResult{Driver: "s3", Storage: s}, nil
}
