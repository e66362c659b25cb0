package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation for analyze requests

const (
	maxBatchConcepts = 20
	maxConceptLength = 500
)

var tenantRx = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID restricts tenant labels to a safe identifier charset
func ValidateTenantID(tenant string) error {
	if !tenantRx.MatchString(tenant) {
		return fmt.Errorf("invalid tenant id: must be 1-64 chars of [a-zA-Z0-9_-]")
	}
	return nil
}

// ValidateMode checks the fan-out mode is one of the recognized values
func ValidateMode(mode string) error {
	switch strings.ToLower(mode) {
	case "", "single", "repeat", "batch":
		return nil
	}
	return fmt.Errorf("invalid mode: %s (allowed: single, repeat, batch)", mode)
}

// ValidateConcepts bounds the batch size and rejects empty or oversized
// concept texts before any token is spent.
func ValidateConcepts(concepts []string) error {
	if len(concepts) == 0 {
		return fmt.Errorf("at least one concept is required")
	}
	if len(concepts) > maxBatchConcepts {
		return fmt.Errorf("too many concepts: %d (max %d)", len(concepts), maxBatchConcepts)
	}
	for i, c := range concepts {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("concept #%d is empty", i+1)
		}
		if len(c) > maxConceptLength {
			return fmt.Errorf("concept #%d too long: %d chars (max %d)", i+1, len(c), maxConceptLength)
		}
	}
	return nil
}
