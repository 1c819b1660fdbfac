package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestManagementMode_IsValid(t *testing.T) {
	for _, tc := range []struct {
		mode ManagementMode
		want bool
	}{
		{ModeManaged, true},
		{ModeUnmanaged, true},
		{ManagementMode(""), false},
		{ManagementMode("hosted"), false},
	} {
		if got := tc.mode.IsValid(); got != tc.want {
			t.Errorf("ManagementMode(%q).IsValid() = %v, want %v", tc.mode, got, tc.want)
		}
	}
}

func TestManagementMode_String(t *testing.T) {
	if got := ModeManaged.String(); got != "managed" {
		t.Errorf("String() = %q, want %q", got, "managed")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", Validationf("missing %s", "type_name"), IsValidation},
		{"not found", &NotFoundError{Entity: "binding", ID: "ds-1"}, IsNotFound},
		{"conflict", Conflictf("type %q exists", "s3"), IsConflict},
	} {
		if !tc.check(tc.err) {
			t.Errorf("%s: predicate rejected %v", tc.name, tc.err)
		}
		if IsValidation(tc.err) && IsConflict(tc.err) {
			t.Errorf("%s: error matched two kinds", tc.name)
		}
	}

	if IsNotFound(errors.New("plain")) || IsConflict(nil) {
		t.Error("predicates matched non-taxonomy errors")
	}
}

func TestErrorTaxonomy_WrappedUnwrap(t *testing.T) {
	cause := errors.New("blob truncated")
	err := fmt.Errorf("loading config: %w", &DataIntegrityError{BindingID: "ds-1", Cause: cause})

	var die *DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("DataIntegrityError not found in %v", err)
	}
	if die.BindingID != "ds-1" {
		t.Errorf("BindingID = %q", die.BindingID)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}

	up := &UpstreamError{Cause: cause}
	if !errors.Is(up, cause) {
		t.Error("UpstreamError cause not reachable through Unwrap")
	}
}

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Entity: "connector type", ID: "ct-abc"}
	if got := err.Error(); got != "connector type ct-abc not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDataSourceBinding_DigestNeverMarshals(t *testing.T) {
	b := DataSourceBinding{
		ID:               "ds-1",
		AccountID:        "acct-42",
		CredentialDigest: "$argon2id$v=19$m=65536,t=3,p=4$salt$key",
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "argon2id") || strings.Contains(string(data), "credential") {
		t.Errorf("digest leaked into JSON: %s", data)
	}
}
