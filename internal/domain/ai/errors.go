package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrTransient indicates a retryable transport or server-side failure.
// Stage retry policy only applies to errors matching this or ErrQuotaExceeded.
var ErrTransient = errors.New("ai transient error")
