package oauthcore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenClientExchangeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		rw.Header().Set("Content-Type", "application/json")
		rw.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	client := newTokenClient(srv.Client(), nil)
	debug := DebugInfo{}
	form := url.Values{"grant_type": {"client_credentials"}}

	bundle, err := client.exchange(context.Background(), srv.URL, form, PlacementBody, "id", "secret", &debug)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", bundle.AccessToken)
	assert.Len(t, debug.Data, 1)
	assert.True(t, debug.Data[0].Completed)
}

func TestTokenClientExchangePlacesBasicAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		rw.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	client := newTokenClient(srv.Client(), nil)
	debug := DebugInfo{}
	form := url.Values{"grant_type": {"client_credentials"}}

	_, err := client.exchange(context.Background(), srv.URL, form, PlacementBasicAuthHeader, "id", "secret", &debug)
	require.NoError(t, err)
	assert.Equal(t, "Basic aWQ6c2VjcmV0", gotAuth)
}

func TestTokenClientExchangeNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	client := newTokenClient(srv.Client(), nil)
	debug := DebugInfo{}
	_, err := client.exchange(context.Background(), srv.URL, url.Values{}, PlacementBody, "", "", &debug)

	require.Error(t, err)
	oerr := AsError(err)
	assert.Equal(t, CodeTokenEndpoint, oerr.Code)
	assert.Equal(t, 1, len(debug.Data))
}

func TestTokenClientExchangeRecordsTransportError(t *testing.T) {
	client := newTokenClient(http.DefaultClient, nil)
	debug := DebugInfo{}

	_, err := client.exchange(context.Background(), "http://127.0.0.1:1", url.Values{}, PlacementBody, "", "", &debug)
	require.Error(t, err)
	require.Len(t, debug.Data, 1)
	assert.Equal(t, "-", debug.Data[0].Response.StatusCode)
	assert.False(t, debug.Data[0].Completed)
}

func TestTokenClientDebugRedactsOnlyInTraceWriter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte(`{"access_token":"tok","refresh_token":"should-not-be-scrubbed-here"}`))
	}))
	defer srv.Close()

	client := newTokenClient(srv.Client(), nil)
	debug := DebugInfo{}
	form := url.Values{"client_secret": {"super-secret"}}

	_, err := client.exchange(context.Background(), srv.URL, form, PlacementBody, "id", "secret", &debug)
	require.NoError(t, err)

	// DebugExchange keeps the raw request body verbatim; redaction only
	// happens in TraceWriter output, never in the recorded data itself.
	assert.Contains(t, debug.Data[0].Request.Body, "super-secret")
}

func TestBuildFormOmitsClientSecretWhenUsingBasicAuth(t *testing.T) {
	req := RequestConfig{ClientId: "id", ClientSecret: "secret", CredentialsPlacement: PlacementBasicAuthHeader}
	form := buildForm(req, nil, true)
	assert.Empty(t, form.Get("client_secret"))

	req.CredentialsPlacement = PlacementBody
	form = buildForm(req, nil, true)
	assert.Equal(t, "secret", form.Get("client_secret"))
}
