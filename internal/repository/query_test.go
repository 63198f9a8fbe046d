package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"shoe", "%shoe%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
	}

	for _, tt := range tests {
		if got := containsPattern(tt.in); got != tt.want {
			t.Errorf("containsPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameFilter_EmptyName_NoCondition(t *testing.T) {
	where, args := nameFilter("name", "", nil)
	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestNameFilter_AppendsPlaceholder(t *testing.T) {
	where, args := nameFilter("p.name", "Kopi", []interface{}{"existing"})
	if where != " WHERE p.name ILIKE $2" {
		t.Errorf("where = %q, want %q", where, " WHERE p.name ILIKE $2")
	}
	if len(args) != 2 || args[1] != "%Kopi%" {
		t.Errorf("args = %v", args)
	}
}

func TestValidID(t *testing.T) {
	if !validID("6f1c1f0e-9a7b-4c63-8d4b-3b0d7d1c2f10") {
		t.Error("expected UUID to be valid")
	}
	for _, id := range []string{"", "123", "not-a-uuid", "64b7f0c2e4b0a1a2b3c4d5e6"} {
		if validID(id) {
			t.Errorf("validID(%q) = true, want false", id)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: pgUniqueViolation}) {
		t.Error("expected unique violation to be detected")
	}
	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: pgUniqueViolation})
	if !isUniqueViolation(wrapped) {
		t.Error("expected wrapped unique violation to be detected")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation should not be a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain error should not be a unique violation")
	}
	if isUniqueViolation(nil) {
		t.Error("nil should not be a unique violation")
	}
}
