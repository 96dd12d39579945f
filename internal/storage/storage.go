// Package storage selects where uploaded bytes live. The local backend
// is real; the remote backends are capability-checked facades that
// refuse work until credentials are configured.
package storage

import (
	"context"
	"errors"

	"gks/record-service/internal/models"
)

var ErrNotConfigured = errors.New("storage provider not configured")

type Provider interface {
	Name() string
	Configured() bool
	Save(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
}

// FromSettings resolves the active provider for one operation. The
// choice is looked up per call rather than held in process-wide state,
// so a settings change never leaks across in-flight requests.
func FromSettings(settings models.Settings, baseDir string) Provider {
	switch settings.StorageType {
	case "s3":
		return s3Provider{settings}
	case "ftp":
		return ftpProvider{settings}
	case "gdrive":
		return gdriveProvider{settings}
	case "onedrive":
		return onedriveProvider{settings}
	}
	return Local{BaseDir: baseDir}
}

// Statuses reports the configured flag for every known backend.
func Statuses(settings models.Settings, baseDir string) map[string]bool {
	all := []Provider{
		Local{BaseDir: baseDir},
		s3Provider{settings},
		ftpProvider{settings},
		gdriveProvider{settings},
		onedriveProvider{settings},
	}
	out := make(map[string]bool, len(all))
	for _, p := range all {
		out[p.Name()] = p.Configured()
	}
	return out
}

// ActiveName is the provider name settings point at, defaulting to local.
func ActiveName(settings models.Settings) string {
	switch settings.StorageType {
	case "s3", "ftp", "gdrive", "onedrive":
		return settings.StorageType
	}
	return "local"
}
