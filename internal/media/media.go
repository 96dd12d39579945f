// Package media validates uploads and derives their stored filenames.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gks/record-service/internal/models"
)

const (
	MaxPhotoSize = 10 << 20
	MaxVideoSize = 120 << 20
	MaxPDFSize   = 30 << 20
)

var (
	ErrUnknownMediaType = errors.New("unknown media type")
	ErrBadExtension     = errors.New("extension not allowed for media type")
	ErrTooLarge         = errors.New("file exceeds size limit for media type")
)

var photoExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
var videoExt = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".webm": true}
var pdfExt = map[string]bool{".pdf": true}

// Validate checks the client-declared media type against the upload's
// extension and size. Nothing is persisted when it fails.
func Validate(mediaType, originalName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch mediaType {
	case models.MediaPhoto:
		if !photoExt[ext] {
			return ErrBadExtension
		}
		if size > MaxPhotoSize {
			return ErrTooLarge
		}
	case models.MediaVideo:
		if !videoExt[ext] {
			return ErrBadExtension
		}
		if size > MaxVideoSize {
			return ErrTooLarge
		}
	case models.MediaPDF:
		if !pdfExt[ext] {
			return ErrBadExtension
		}
		if size > MaxPDFSize {
			return ErrTooLarge
		}
	default:
		return ErrUnknownMediaType
	}
	return nil
}

// Identifier picks the record field a filename is keyed on, in priority
// order work_order, plate, vin, reference_no.
func Identifier(rec models.Record) string {
	switch {
	case rec.WorkOrder != "":
		return rec.WorkOrder
	case rec.Plate != "":
		return rec.Plate
	case rec.VIN != "":
		return rec.VIN
	case rec.ReferenceNo != "":
		return rec.ReferenceNo
	}
	return "unknown"
}

// Filename derives the stored name:
// {year}-{record_type}-{identifier}-{YYYYMMDD_HHMM}-{seq:03d}{ext}.
// seq is 1 + the record's current file count; concurrent uploads can
// race on it, which at worst produces a duplicate-looking name.
func Filename(recordType, identifier string, seq int, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s-%s-%s-%03d%s", now.Year(), recordType, identifier, now.Format("20060102_1504"), seq, ext)
}
