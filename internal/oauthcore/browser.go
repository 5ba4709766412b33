package oauthcore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// authorizationWindow performs the interactive step of the
// authorization_code grant (C6, spec.md §4.6): open the user's browser at
// the authorization URL and wait for the redirect carrying the code (or an
// error) back to a local callback server. Grounded on the teacher's
// internal/auth/auth.go Login/waitForCallback/openBrowser trio.
type authorizationWindow interface {
	// authorize blocks until the callback arrives, ctx is cancelled, or
	// timeout elapses, returning the authorization code on success.
	authorize(ctx context.Context, req RequestConfig, pkce *pkcePair, timeout time.Duration) (code string, debug DebugInfo, err error)
}

// localCallbackWindow is the real implementation: it starts an HTTP server
// on the callback URL's host:port, opens the system browser, and waits for
// either a ?code= or ?error= query parameter on the configured path.
type localCallbackWindow struct {
	openBrowser func(rawURL string) error
}

func newLocalCallbackWindow() *localCallbackWindow {
	return &localCallbackWindow{openBrowser: openSystemBrowser}
}

func (w *localCallbackWindow) authorize(ctx context.Context, req RequestConfig, pkce *pkcePair, timeout time.Duration) (string, DebugInfo, error) {
	debug := DebugInfo{}

	callback, err := url.Parse(req.CallbackUrl)
	if err != nil {
		return "", debug, ErrConfiguration("invalid or missing request configuration")
	}

	type result struct {
		code string
		err  error
	}
	resultCh := make(chan result, 1)
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath(callback), func(rw http.ResponseWriter, hr *http.Request) {
		// Exact scheme+host+port+path matching is enforced by only
		// serving on the callback's own host:port and path; any other
		// path on this listener 404s via the default mux handler.
		q := hr.URL.Query()
		if req.State != "" && q.Get("state") != req.State {
			once.Do(func() {
				resultCh <- result{err: ErrAuthorizationRejected("state mismatch")}
			})
			writeCallbackPage(rw, false)
			return
		}
		if errParam := q.Get("error"); errParam != "" {
			desc := q.Get("error_description")
			once.Do(func() {
				resultCh <- result{err: ErrAuthorizationRejected(fmt.Sprintf("%s: %s", errParam, desc))}
			})
			writeCallbackPage(rw, false)
			return
		}
		code := q.Get("code")
		if code == "" {
			once.Do(func() {
				resultCh <- result{err: ErrAuthorizationRejected("missing code parameter")}
			})
			writeCallbackPage(rw, false)
			return
		}
		once.Do(func() {
			resultCh <- result{code: code}
		})
		writeCallbackPage(rw, true)
	})

	server := &http.Server{Addr: callback.Host, Handler: mux}
	listenErrCh := make(chan error, 1)
	go func() {
		listenErrCh <- server.ListenAndServe()
	}()
	defer server.Close()

	authURL, err := buildAuthorizationURL(req, pkce)
	if err != nil {
		return "", debug, err
	}

	// The authorization-window trace records the browser navigation and its
	// eventual outcome as one DebugExchange, prepended ahead of the
	// token-endpoint exchange by Merge (spec.md §3's DebugInfo definition).
	// There's no real HTTP round trip from this process's point of view --
	// the navigation happens in the user's browser -- so Status/Headers/Body
	// stay at their zero values; only the request's Url/Method and the
	// response's StatusText/Error/Timeline carry meaningful data.
	nav := DebugExchange{
		RequestId: newRequestId(),
		Request: DebugRequest{
			Url:       authURL,
			Method:    http.MethodGet,
			Timestamp: time.Now(),
		},
	}

	// Give the listener a brief moment to bind before navigating, same
	// sequencing as the teacher's Login.
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	if err := w.openBrowser(authURL); err != nil {
		nav.Response = DebugResponse{Error: err.Error(), Timestamp: time.Now(), Timeline: time.Since(start)}
		debug.Append(nav)
		return "", debug, ErrAuthorizationAborted()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-resultCh:
		nav.Response = DebugResponse{StatusText: "redirected", Timestamp: time.Now(), Timeline: time.Since(start)}
		nav.Completed = r.err == nil
		if r.err != nil {
			nav.Response.Error = r.err.Error()
			debug.Append(nav)
			return "", debug, r.err
		}
		debug.Append(nav)
		return r.code, debug, nil
	case <-ctx.Done():
		nav.Response = DebugResponse{StatusText: "aborted", Timestamp: time.Now(), Timeline: time.Since(start)}
		debug.Append(nav)
		return "", debug, ErrAuthorizationAborted()
	case <-timer.C:
		nav.Response = DebugResponse{StatusText: "timeout", Timestamp: time.Now(), Timeline: time.Since(start)}
		debug.Append(nav)
		return "", debug, ErrAuthorizationTimeout()
	case err := <-listenErrCh:
		nav.Response = DebugResponse{StatusText: "listener failed", Timestamp: time.Now(), Timeline: time.Since(start)}
		if err != nil && err != http.ErrServerClosed {
			nav.Response.Error = err.Error()
			debug.Append(nav)
			return "", debug, ErrConfiguration("invalid or missing request configuration")
		}
		debug.Append(nav)
		return "", debug, ErrAuthorizationAborted()
	}
}

// callbackPath returns the ServeMux pattern the local server should
// register the handler on: the callback URL's path, defaulting to "/" when
// it names none, with "{$}" appended to a trailing slash so the pattern
// matches that exact path rather than every path beneath it.
func callbackPath(callback *url.URL) string {
	path := callback.Path
	if path == "" {
		path = "/"
	}
	if strings.HasSuffix(path, "/") {
		path += "{$}"
	}
	return path
}

// buildAuthorizationURL constructs the authorization-endpoint URL with
// response_type, client_id, redirect_uri, scope, state, and (when PKCE is
// enabled) code_challenge/code_challenge_method query parameters.
func buildAuthorizationURL(req RequestConfig, pkce *pkcePair) (string, error) {
	base, err := url.Parse(req.AuthorizationUrl)
	if err != nil {
		return "", ErrConfiguration("invalid or missing request configuration")
	}

	q := base.Query()
	q.Set("response_type", "code")
	q.Set("client_id", req.ClientId)
	if req.CallbackUrl != "" {
		q.Set("redirect_uri", req.CallbackUrl)
	}
	if req.Scope != "" {
		q.Set("scope", req.Scope)
	}
	if req.State != "" {
		q.Set("state", req.State)
	}
	if req.PKCE && pkce != nil {
		q.Set("code_challenge", pkce.challenge)
		q.Set("code_challenge_method", PKCEChallengeMethod)
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// writeCallbackPage renders the minimal page shown in the user's browser
// tab after the redirect lands, mirroring the teacher's own
// success/failure callback pages.
func writeCallbackPage(rw http.ResponseWriter, ok bool) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if ok {
		fmt.Fprint(rw, "<html><body><h3>Authorization complete. You may close this tab.</h3></body></html>")
		return
	}
	rw.WriteHeader(http.StatusBadRequest)
	fmt.Fprint(rw, "<html><body><h3>Authorization failed. You may close this tab and retry.</h3></body></html>")
}

// openSystemBrowser launches the platform's default browser at rawURL, the
// same per-OS dispatch the teacher's openBrowser helper uses.
func openSystemBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
