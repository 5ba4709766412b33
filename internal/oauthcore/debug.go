package oauthcore

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sensitiveParams are query parameter and header names redacted from debug
// output, matching the teacher's internal/observability/trace.go scrub
// list but scoped to OAuth wire material.
var sensitiveParams = map[string]bool{
	"access_token": true, "refresh_token": true, "code_verifier": true,
	"client_secret": true, "password": true,
}

// DebugRequest captures one outbound token-endpoint HTTP request.
type DebugRequest struct {
	Url       string
	Method    string
	Headers   http.Header
	Body      string
	BodyBytes []byte
	Timestamp time.Time
}

// DebugResponse captures one token-endpoint HTTP response, or a synthetic
// stand-in when the request never got one.
type DebugResponse struct {
	Url        string
	Status     int
	StatusCode string // textual form; "-" for synthetic transport-error responses
	StatusText string
	Headers    http.Header
	Body       any    // leniently parsed JSON, or the raw string on parse failure
	RawBody    []byte
	Timestamp  time.Time
	Timeline   time.Duration
	Error      string
}

// DebugExchange is one complete token-endpoint HTTP round-trip.
type DebugExchange struct {
	RequestId string
	Request   DebugRequest
	Response  DebugResponse
	FromCache bool
	Completed bool
}

// DebugInfo is the ordered trace produced during one token acquisition. For
// authorization_code it additionally carries the authorization-window trace
// prepended ahead of the token-endpoint exchange(s).
type DebugInfo struct {
	Data []DebugExchange
}

// Append adds exchange to the trace, mutating in place. The recorder never
// drops records, per spec.md §4.4.
func (d *DebugInfo) Append(ex DebugExchange) {
	d.Data = append(d.Data, ex)
}

// Merge returns a new trace holding authorizationWindow's exchanges followed
// by tokenExchange's, used to compose the
// authorization-window trace with the subsequent token-endpoint trace for
// authorization_code acquisitions (spec.md §3, DebugInfo definition).
func Merge(authorizationWindow, tokenExchange DebugInfo) DebugInfo {
	merged := DebugInfo{Data: make([]DebugExchange, 0, len(authorizationWindow.Data)+len(tokenExchange.Data))}
	merged.Data = append(merged.Data, authorizationWindow.Data...)
	merged.Data = append(merged.Data, tokenExchange.Data...)
	return merged
}

// newRequestId returns a random (UUIDv4) identifier for a DebugExchange.
func newRequestId() string {
	return uuid.NewString()
}

// scrubHeaders returns a shallow copy of h with sensitive values redacted.
func scrubHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if k == "Authorization" {
			out[k] = []string{"[REDACTED]"}
			continue
		}
		out[k] = v
	}
	return out
}

// scrubBody redacts sensitive form-encoded fields from a request body
// string for safe debug display, without losing the field's presence.
func scrubBody(body string) string {
	if body == "" {
		return body
	}
	parts := strings.Split(body, "&")
	for i, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 && sensitiveParams[strings.ToLower(kv[0])] {
			parts[i] = kv[0] + "=[REDACTED]"
		}
	}
	return strings.Join(parts, "&")
}
