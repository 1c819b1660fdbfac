package idgen

import (
	"strings"
	"testing"
)

// Deterministic IDs are part of the cross-service contract: the same natural
// key must hash to the same id in every implementation. These expected values
// are fixed; a change here is a breaking change.
func TestConnectorTypeID_Stable(t *testing.T) {
	for _, tc := range []struct {
		name string
		want string
	}{
		{"s3", "ct-de01611fb4b6222f0022"},
		{"postgres", "ct-6b0df05c05f3bd5bddd6"},
	} {
		if got := ConnectorTypeID(tc.name); got != tc.want {
			t.Errorf("ConnectorTypeID(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestBindingID_Stable(t *testing.T) {
	s3 := ConnectorTypeID("s3")
	for _, tc := range []struct {
		account string
		want    string
	}{
		{"acct-42", "ds-09b72fcdc7de4a836fcd"},
		{"acct-7", "ds-172dbda68b4da89f2e8a"},
	} {
		if got := BindingID(tc.account, s3); got != tc.want {
			t.Errorf("BindingID(%q, %q) = %q, want %q", tc.account, s3, got, tc.want)
		}
	}
}

// Concatenation of key parts must not be ambiguous: ("a", "b-c") and
// ("a\x00b", "c") have to produce different ids.
func TestBindingID_NoConcatenationCollision(t *testing.T) {
	a := BindingID("a", "b-c")
	b := BindingID("a\x00b", "c")
	if a == b {
		t.Fatalf("ambiguous key join: both inputs hash to %s", a)
	}
}

func TestBindingID_DiffersByAccount(t *testing.T) {
	typeID := ConnectorTypeID("s3")
	if BindingID("acct-1", typeID) == BindingID("acct-2", typeID) {
		t.Fatal("expected different accounts to yield different binding ids")
	}
}

func TestNewSchemaID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewSchemaID()
		if err != nil {
			t.Fatalf("NewSchemaID: %v", err)
		}
		if !strings.HasPrefix(id, SchemaPrefix) {
			t.Fatalf("id %q missing prefix %q", id, SchemaPrefix)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
