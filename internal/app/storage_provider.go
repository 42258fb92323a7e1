package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/moodlog-backend/internal/platform/gcp"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService returns nil, nil when no mood image bucket is
// configured; generated images are then stored inline.
func resolveBucketService(ctx context.Context, log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	if strings.TrimSpace(cfg.MoodImageBucket) == "" {
		log.Info("No mood image bucket configured, storing generated images inline")
		return nil, nil
	}
	storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost)
	if err != nil {
		classified := classifyStorageConfigError(cfg.ObjectStorageMode, storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", cfg.ObjectStorageMode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", cfg.MoodImageBucket,
	)

	bucket, err := newBucketService(ctx, log, gcp.BucketConfig{
		Name:          cfg.MoodImageBucket,
		CDNDomain:     cfg.MoodImageCDNDomain,
		PublicBaseURL: cfg.MoodImagePublicBase,
		Storage:       storageCfg,
	})
	if err != nil {
		classified := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorConnectFailed,
			Mode:         string(storageCfg.Mode),
			EmulatorHost: storageCfg.EmulatorHost,
			Cause:        err,
		}
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", classified.Code,
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageConfigError(rawMode string, storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorInvalidEmulatorHost
	switch {
	case storageCfg.Mode == "":
		code = StorageProviderBootstrapErrorInvalidMode
	case storageCfg.EmulatorHost == "":
		code = StorageProviderBootstrapErrorMissingEmulatorHost
	}
	mode := string(storageCfg.Mode)
	if mode == "" {
		mode = strings.TrimSpace(rawMode)
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         mode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
