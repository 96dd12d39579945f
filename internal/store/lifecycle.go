package store

import (
	"fmt"
	"time"

	"gks/record-service/internal/branch"
	"gks/record-service/internal/models"
)

// ValidateRecord enforces the per-type required fields before anything
// is persisted:
//
//	standard    plate AND work_order
//	roadassist  plate
//	damaged     reference_no
//	pdi         vin
//
// The branch requirement for non-standard types is enforced by
// ResolveBranch, which rejects an empty resolved branch for those
// types.
func ValidateRecord(input CreateRecordInput) error {
	var missing []string
	switch input.RecordType {
	case models.TypeStandard:
		if input.Plate == "" {
			missing = append(missing, "plate")
		}
		if input.WorkOrder == "" {
			missing = append(missing, "work_order")
		}
	case models.TypeRoadAssist:
		if input.Plate == "" {
			missing = append(missing, "plate")
		}
	case models.TypeDamaged:
		if input.ReferenceNo == "" {
			missing = append(missing, "reference_no")
		}
	case models.TypePDI:
		if input.VIN == "" {
			missing = append(missing, "vin")
		}
	default:
		missing = append(missing, "record_type")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// ResolveBranch decides the branch a new record is attributed to.
//
// Standard records carry the branch in the work-order prefix: when the
// first character of the work order is a known branch code it wins over
// any explicitly requested branch. Staff and apprentice creators are
// pinned to their own branch; naming (or inferring) a different one is
// ErrBranchMismatch. Admins may set any registered branch.
//
// Non-standard record types must end up with a branch; a resolution
// that comes up empty is a ValidationError, so an admin create without
// a branch never persists.
func ResolveBranch(creator models.User, requested, recordType, workOrder string) (string, error) {
	inferred := ""
	if recordType == models.TypeStandard && workOrder != "" {
		prefix := workOrder[:1]
		if branch.Valid(prefix) {
			inferred = prefix
		}
	}

	resolved := ""
	if creator.Role == models.RoleAdmin {
		resolved = requested
		if inferred != "" {
			resolved = inferred
		}
	} else {
		if requested != "" && requested != creator.BranchCode {
			return "", ErrBranchMismatch
		}
		if inferred != "" && inferred != creator.BranchCode {
			return "", ErrBranchMismatch
		}
		resolved = creator.BranchCode
	}

	if resolved == "" && recordType != models.TypeStandard {
		return "", &ValidationError{Fields: []string{"branch_code"}}
	}
	return resolved, nil
}

// InitialStatus is pending_review for apprentice-authored records and
// active for everyone else.
func InitialStatus(creator models.User) string {
	if creator.Role == models.RoleApprentice {
		return models.StatusPendingReview
	}
	return models.StatusActive
}

// CaseKey builds the human-readable label for a record:
// {year}-{TAG}-{branch or 0}-{identifier or sentinel}[-{secondary}].
// It is generated once at creation and never rewritten. Uniqueness is
// advisory only; two records sharing type, branch, identifier and year
// will collide.
func CaseKey(now time.Time, recordType, branchCode, plate, workOrder, vin, referenceNo string) string {
	year := now.Year()
	if branchCode == "" {
		branchCode = "0"
	}
	switch recordType {
	case models.TypeStandard:
		return fmt.Sprintf("%d-STD-%s-%s-%s", year, branchCode, orSentinel(workOrder, "NOORDER"), orSentinel(plate, "NOPLATE"))
	case models.TypeRoadAssist:
		return fmt.Sprintf("%d-RA-%s-%s", year, branchCode, orSentinel(plate, "NOPLATE"))
	case models.TypeDamaged:
		return fmt.Sprintf("%d-DMG-%s-%s", year, branchCode, orSentinel(referenceNo, "NOREF"))
	case models.TypePDI:
		return fmt.Sprintf("%d-PDI-%s-%s", year, branchCode, orSentinel(vin, "NOVIN"))
	}
	return fmt.Sprintf("%d-UNK-%s", year, branchCode)
}

func orSentinel(value, sentinel string) string {
	if value == "" {
		return sentinel
	}
	return value
}

// VINLast5 derives the search-friendly tail of a VIN.
func VINLast5(vin string) string {
	runes := []rune(vin)
	if len(runes) < 5 {
		return ""
	}
	return string(runes[len(runes)-5:])
}
