package bridge

import (
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strings"
)

// Upstream error codes that mean the provider session can no longer accept
// requests and must be recreated.
var staleCodes = map[string]struct{}{
	"conversation_not_found":      {},
	"conversation_already_exists": {},
	"response_in_progress":        {},
	"session_expired":             {},
}

// Substring patterns kept as a compatibility shim for upstream responses
// that carry no structured code.
var stalePatterns = []string{
	"already has an active response",
	"conversation_not_found",
	"conversation not found",
}

type upstreamErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// IsStale reports whether an offer failure indicates a stale upstream
// session, eligible for exactly one recreate-and-retry cycle. Structured
// error codes are checked first; substring matching and transport-level
// connection failures are the fallback.
func IsStale(err error) bool {
	if err == nil {
		return false
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		var body upstreamErrorBody
		if jsonErr := json.Unmarshal([]byte(upErr.Body), &body); jsonErr == nil && body.Error.Code != "" {
			_, stale := staleCodes[body.Error.Code]
			return stale
		}

		lower := strings.ToLower(upErr.Body)
		for _, pattern := range stalePatterns {
			if strings.Contains(lower, pattern) {
				return true
			}
		}
		return false
	}

	// A connection-level failure gives no evidence about the upstream
	// session's state; treat it as stale so one retry gets a fresh one.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
