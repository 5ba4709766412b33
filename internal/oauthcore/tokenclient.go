package oauthcore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenClient performs POST exchanges against a token endpoint (C5,
// spec.md §4.5) and records every attempt through a DebugRecorder,
// gated by a per-URL circuit breaker (SPEC_FULL.md §12 supplemented
// feature).
type tokenClient struct {
	httpClient *http.Client
	breakers   *circuitBreakerRegistry
	trace      *TraceWriter
}

func newTokenClient(httpClient *http.Client, trace *TraceWriter) *tokenClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &tokenClient{
		httpClient: httpClient,
		breakers:   newCircuitBreakerRegistry(defaultCircuitBreakerConfig()),
		trace:      trace,
	}
}

// exchange POSTs a form-encoded grant request to tokenURL and returns the
// parsed TokenBundle candidate. The caller decides whether to persist it;
// a bundle with Error set must not be stored (spec.md §4.2).
func (c *tokenClient) exchange(ctx context.Context, tokenURL string, form url.Values, placement CredentialsPlacement, clientID, clientSecret string, debug *DebugInfo) (*TokenBundle, error) {
	cb := c.breakers.forURL(tokenURL)
	if !cb.Allow() {
		return nil, ErrTokenEndpoint(0, "circuit open: token endpoint repeatedly failed", nil)
	}

	body := form.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if placement == PlacementBasicAuthHeader {
		req.Header.Set("Authorization", "Basic "+basicAuth(clientID, clientSecret))
	}

	exchange := DebugExchange{
		RequestId: newRequestId(),
		Request: DebugRequest{
			Url:       tokenURL,
			Method:    http.MethodPost,
			Headers:   scrubHeaders(req.Header),
			Body:      body,
			BodyBytes: []byte(body),
			Timestamp: time.Now(),
		},
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		exchange.Response = DebugResponse{
			StatusCode: "-",
			StatusText: classifyTransportError(err),
			Headers:    http.Header{"X-Error-Class": []string{"transport"}},
			Timestamp:  time.Now(),
			Timeline:   elapsed,
			Error:      err.Error(),
		}
		exchange.Completed = false
		debug.Append(exchange)
		c.trace.WriteExchange(exchange)
		cb.RecordFailure()
		return nil, ErrTokenEndpoint(0, err.Error(), err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)

	parsed, parseErr := parseTokenResponse(raw)

	exchange.Response = DebugResponse{
		Url:        tokenURL,
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    resp.Header,
		RawBody:    raw,
		Timestamp:  time.Now(),
		Timeline:   elapsed,
	}
	if parseErr != nil {
		// Lenient parsing: surface the raw string for debug visibility,
		// per spec.md §4.5, rather than failing the exchange outright.
		exchange.Response.Body = string(raw)
	} else {
		exchange.Response.Body = parsed
	}
	exchange.Completed = readErr == nil
	debug.Append(exchange)
	c.trace.WriteExchange(exchange)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cb.RecordFailure()
		return nil, ErrTokenEndpoint(resp.StatusCode, string(raw), nil)
	}

	cb.RecordSuccess()

	if parsed == nil {
		return nil, ErrTokenEndpoint(resp.StatusCode, string(raw), fmt.Errorf("could not parse token response as JSON"))
	}
	return parsed, nil
}

// parseTokenResponse leniently decodes a token-endpoint body as a
// TokenBundle. On JSON failure it returns (nil, err) so the caller can fall
// back to the raw string for debug purposes.
func parseTokenResponse(raw []byte) (*TokenBundle, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	var bundle TokenBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// basicAuth builds the Basic auth header value for clientID:clientSecret.
func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

// classifyTransportError returns a short machine-stable code for a
// transport-level failure, used as the synthetic response's status text
// (spec.md §4.4).
func classifyTransportError(err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return "timeout"
	}
	if strings.Contains(err.Error(), "connection refused") {
		return "connection_refused"
	}
	return "network_error"
}

// buildForm constructs the form-encoded body for a grant exchange per the
// per-grant field lists in spec.md §4.5. client_secret is included in the
// body only when credentials are not placed in the Basic auth header.
// scope is included only when includeScope is true -- spec.md §4.5 lists
// scope among the authorization_code/client_credentials/password fields
// but omits it from the refresh_token body, so refresh.go calls this with
// includeScope false.
func buildForm(req RequestConfig, extra map[string]string, includeScope bool) url.Values {
	form := url.Values{}
	form.Set("client_id", req.ClientId)
	if req.CredentialsPlacement != PlacementBasicAuthHeader && req.ClientSecret != "" {
		form.Set("client_secret", req.ClientSecret)
	}
	if includeScope && req.Scope != "" {
		form.Set("scope", req.Scope)
	}
	for k, v := range extra {
		if v != "" {
			form.Set(k, v)
		}
	}
	return form
}
