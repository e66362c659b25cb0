package middleware

import (
	"strings"
	"testing"
)

func TestValidateTenantID(t *testing.T) {
	cases := []struct {
		tenant string
		ok     bool
	}{
		{"acme", true},
		{"acme-labs_01", true},
		{"", false},
		{"has space", false},
		{"dots.are.out", false},
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 65), false},
	}
	for _, c := range cases {
		err := ValidateTenantID(c.tenant)
		if (err == nil) != c.ok {
			t.Errorf("ValidateTenantID(%q) err=%v, want ok=%v", c.tenant, err, c.ok)
		}
	}
}

func TestValidateMode(t *testing.T) {
	for _, mode := range []string{"", "single", "repeat", "batch", "REPEAT"} {
		if err := ValidateMode(mode); err != nil {
			t.Errorf("ValidateMode(%q) = %v, want nil", mode, err)
		}
	}
	if err := ValidateMode("parallel"); err == nil {
		t.Errorf("unknown mode must be rejected")
	}
}

func TestValidateConcepts(t *testing.T) {
	if err := ValidateConcepts(nil); err == nil {
		t.Errorf("empty batch must be rejected")
	}
	if err := ValidateConcepts([]string{"a water tracker"}); err != nil {
		t.Errorf("valid single concept rejected: %v", err)
	}
	if err := ValidateConcepts([]string{"ok", "   "}); err == nil {
		t.Errorf("blank concept must be rejected")
	}
	if err := ValidateConcepts([]string{strings.Repeat("x", maxConceptLength+1)}); err == nil {
		t.Errorf("oversized concept must be rejected")
	}

	many := make([]string, maxBatchConcepts+1)
	for i := range many {
		many[i] = "concept"
	}
	if err := ValidateConcepts(many); err == nil {
		t.Errorf("oversized batch must be rejected")
	}
}
