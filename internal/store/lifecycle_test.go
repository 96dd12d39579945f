package store

import (
	"errors"
	"testing"
	"time"

	"gks/record-service/internal/models"
)

func TestValidateRecord(t *testing.T) {
	cases := []struct {
		name    string
		input   CreateRecordInput
		missing []string
	}{
		{"standard ok", CreateRecordInput{RecordType: "standard", Plate: "34ABC123", WorkOrder: "40216001"}, nil},
		{"standard no plate", CreateRecordInput{RecordType: "standard", WorkOrder: "40216001"}, []string{"plate"}},
		{"standard no work order", CreateRecordInput{RecordType: "standard", Plate: "34ABC123"}, []string{"work_order"}},
		{"standard empty", CreateRecordInput{RecordType: "standard"}, []string{"plate", "work_order"}},
		{"roadassist ok", CreateRecordInput{RecordType: "roadassist", Plate: "16XYZ99"}, nil},
		{"roadassist no plate", CreateRecordInput{RecordType: "roadassist"}, []string{"plate"}},
		{"damaged ok", CreateRecordInput{RecordType: "damaged", ReferenceNo: "REF-100"}, nil},
		{"damaged no ref", CreateRecordInput{RecordType: "damaged"}, []string{"reference_no"}},
		{"pdi ok", CreateRecordInput{RecordType: "pdi", VIN: "VF640ACA000012345"}, nil},
		{"pdi no vin", CreateRecordInput{RecordType: "pdi"}, []string{"vin"}},
		{"unknown type", CreateRecordInput{RecordType: "towing"}, []string{"record_type"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.input)
			if tt.missing == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.missing) {
				t.Fatalf("expected missing %v, got %v", tt.missing, verr.Fields)
			}
			for i, field := range tt.missing {
				if verr.Fields[i] != field {
					t.Fatalf("expected missing %v, got %v", tt.missing, verr.Fields)
				}
			}
		})
	}
}

func TestResolveBranchWorkOrderInference(t *testing.T) {
	admin := models.User{Role: models.RoleAdmin}

	// Work order 40216001 starts with branch code 4 (Hadımköy).
	code, err := ResolveBranch(admin, "1", models.TypeStandard, "40216001")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if code != "4" {
		t.Fatalf("expected inferred branch 4, got %q", code)
	}

	// Prefix that is not a branch code falls back to the explicit value.
	code, err = ResolveBranch(admin, "2", models.TypeStandard, "90216001")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if code != "2" {
		t.Fatalf("expected explicit branch 2, got %q", code)
	}

	// Inference only applies to standard records.
	code, err = ResolveBranch(admin, "3", models.TypeRoadAssist, "40216001")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if code != "3" {
		t.Fatalf("expected explicit branch 3, got %q", code)
	}
}

func TestResolveBranchForcesCreatorBranch(t *testing.T) {
	staff := models.User{Role: models.RoleStaff, BranchCode: "2"}

	code, err := ResolveBranch(staff, "", models.TypeRoadAssist, "")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if code != "2" {
		t.Fatalf("expected creator branch 2, got %q", code)
	}

	// Same branch requested explicitly is fine.
	code, err = ResolveBranch(staff, "2", models.TypeRoadAssist, "")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if code != "2" {
		t.Fatalf("expected branch 2, got %q", code)
	}

	// A different branch is an authorization failure.
	if _, err := ResolveBranch(staff, "4", models.TypeRoadAssist, ""); !errors.Is(err, ErrBranchMismatch) {
		t.Fatalf("expected ErrBranchMismatch, got %v", err)
	}

	// A work order pointing at another branch is the same failure.
	if _, err := ResolveBranch(staff, "", models.TypeStandard, "40216001"); !errors.Is(err, ErrBranchMismatch) {
		t.Fatalf("expected ErrBranchMismatch, got %v", err)
	}

	apprentice := models.User{Role: models.RoleApprentice, BranchCode: "5"}
	if _, err := ResolveBranch(apprentice, "1", models.TypeDamaged, ""); !errors.Is(err, ErrBranchMismatch) {
		t.Fatalf("expected ErrBranchMismatch for apprentice, got %v", err)
	}
}

func TestResolveBranchRequiresBranchForNonStandard(t *testing.T) {
	admin := models.User{Role: models.RoleAdmin}

	for _, recordType := range []string{models.TypeRoadAssist, models.TypeDamaged, models.TypePDI} {
		t.Run(recordType, func(t *testing.T) {
			_, err := ResolveBranch(admin, "", recordType, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0] != "branch_code" {
				t.Fatalf("expected missing branch_code, got %v", verr.Fields)
			}
		})
	}

	// Standard records may resolve without a branch; the case key falls
	// back to the 0 placeholder.
	code, err := ResolveBranch(admin, "", models.TypeStandard, "90216001")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if code != "" {
		t.Fatalf("expected empty branch, got %q", code)
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(models.User{Role: models.RoleApprentice}); got != models.StatusPendingReview {
		t.Fatalf("apprentice records should start pending_review, got %s", got)
	}
	if got := InitialStatus(models.User{Role: models.RoleStaff}); got != models.StatusActive {
		t.Fatalf("staff records should start active, got %s", got)
	}
	if got := InitialStatus(models.User{Role: models.RoleAdmin}); got != models.StatusActive {
		t.Fatalf("admin records should start active, got %s", got)
	}
}

func TestCaseKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"standard", CaseKey(now, "standard", "4", "34ABC123", "40216001", "", ""), "2026-STD-4-40216001-34ABC123"},
		{"standard no plate sentinel", CaseKey(now, "standard", "4", "", "40216001", "", ""), "2026-STD-4-40216001-NOPLATE"},
		{"roadassist", CaseKey(now, "roadassist", "2", "16XYZ99", "", "", ""), "2026-RA-2-16XYZ99"},
		{"roadassist sentinel", CaseKey(now, "roadassist", "2", "", "", "", ""), "2026-RA-2-NOPLATE"},
		{"damaged", CaseKey(now, "damaged", "1", "", "", "", "REF-100"), "2026-DMG-1-REF-100"},
		{"damaged sentinel", CaseKey(now, "damaged", "1", "", "", "", ""), "2026-DMG-1-NOREF"},
		{"pdi", CaseKey(now, "pdi", "5", "", "", "VF640ACA000012345", ""), "2026-PDI-5-VF640ACA000012345"},
		{"no branch placeholder", CaseKey(now, "pdi", "", "", "", "VF640ACA000012345", ""), "2026-PDI-0-VF640ACA000012345"},
	}

	for _, tt := range cases {
		if tt.got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestVINLast5(t *testing.T) {
	if got := VINLast5("VF640ACA000012345"); got != "12345" {
		t.Fatalf("expected 12345, got %q", got)
	}
	if got := VINLast5("1234"); got != "" {
		t.Fatalf("short VIN should yield empty, got %q", got)
	}
	if got := VINLast5(""); got != "" {
		t.Fatalf("empty VIN should yield empty, got %q", got)
	}
}
