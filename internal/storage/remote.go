package storage

import (
	"context"

	"gks/record-service/internal/models"
)

// The remote backends only check credentials; actual transfer is out of
// scope for this service and every call without credentials fails with
// ErrNotConfigured.

type s3Provider struct {
	settings models.Settings
}

func (s3Provider) Name() string { return "s3" }

func (p s3Provider) Configured() bool {
	s := p.settings
	return s.AWSAccessKey != "" && s.AWSSecretKey != "" && s.AWSBucket != "" && s.AWSRegion != ""
}

func (p s3Provider) Save(context.Context, string, []byte) error { return ErrNotConfigured }
func (p s3Provider) Delete(context.Context, string) error       { return ErrNotConfigured }

type ftpProvider struct {
	settings models.Settings
}

func (ftpProvider) Name() string { return "ftp" }

func (p ftpProvider) Configured() bool {
	s := p.settings
	return s.FTPHost != "" && s.FTPUser != "" && s.FTPPassword != ""
}

func (p ftpProvider) Save(context.Context, string, []byte) error { return ErrNotConfigured }
func (p ftpProvider) Delete(context.Context, string) error       { return ErrNotConfigured }

type gdriveProvider struct {
	settings models.Settings
}

func (gdriveProvider) Name() string { return "gdrive" }

func (p gdriveProvider) Configured() bool {
	return p.settings.GDriveClientID != "" && p.settings.GDriveClientSecret != ""
}

func (p gdriveProvider) Save(context.Context, string, []byte) error { return ErrNotConfigured }
func (p gdriveProvider) Delete(context.Context, string) error       { return ErrNotConfigured }

type onedriveProvider struct {
	settings models.Settings
}

func (onedriveProvider) Name() string { return "onedrive" }

func (p onedriveProvider) Configured() bool {
	return p.settings.OneDriveClientID != "" && p.settings.OneDriveClientSecret != ""
}

func (p onedriveProvider) Save(context.Context, string, []byte) error { return ErrNotConfigured }
func (p onedriveProvider) Delete(context.Context, string) error       { return ErrNotConfigured }
