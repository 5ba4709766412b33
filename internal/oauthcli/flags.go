package oauthcli

import (
	"github.com/spf13/cobra"

	"github.com/httpcraft/oauthcore/internal/oauthcore"
)

// requestFlags mirrors oauthcore.RequestConfig's fields as CLI flags,
// shared across the login/token/refresh/clear subcommands the same way
// the teacher's internal/commands/auth.go shares one flag set across its
// auth subcommands.
type requestFlags struct {
	collectionUid string

	grantType        string
	accessTokenUrl   string
	refreshTokenUrl  string
	authorizationUrl string
	callbackUrl      string

	clientId     string
	clientSecret string
	username     string
	password     string

	scope string
	state string
	pkce  bool

	credentialsPlacement string
	credentialsId        string

	autoRefresh bool
	autoFetch   bool

	forceFetch bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.collectionUid, "collection", "default", "collection identifier used to key the credential store")

	fl.StringVar(&f.accessTokenUrl, "access-token-url", "", "token endpoint URL")
	fl.StringVar(&f.refreshTokenUrl, "refresh-token-url", "", "refresh endpoint URL (defaults to --access-token-url)")
	fl.StringVar(&f.authorizationUrl, "authorization-url", "", "authorization endpoint URL (authorization_code only)")
	fl.StringVar(&f.callbackUrl, "callback-url", "http://localhost:8749/callback", "local redirect URL (authorization_code only)")

	fl.StringVar(&f.clientId, "client-id", "", "OAuth client id")
	fl.StringVar(&f.clientSecret, "client-secret", "", "OAuth client secret")
	fl.StringVar(&f.username, "username", "", "resource owner username (password grant only)")
	fl.StringVar(&f.password, "password", "", "resource owner password (password grant only)")

	fl.StringVar(&f.scope, "scope", "", "space-delimited scope")
	fl.StringVar(&f.state, "state", "", "opaque state value (authorization_code only)")
	fl.BoolVar(&f.pkce, "pkce", false, "use PKCE with S256 (authorization_code only)")

	fl.StringVar(&f.credentialsPlacement, "credentials-placement", "body", "basic_auth_header or body")
	fl.StringVar(&f.credentialsId, "credentials-id", "", "stable id for the stored credential set; generated if empty")

	fl.BoolVar(&f.autoRefresh, "auto-refresh", true, "attempt a refresh before fetching fresh credentials")
	fl.BoolVar(&f.autoFetch, "auto-fetch", true, "fetch fresh credentials when nothing usable is cached")
}

func (f *requestFlags) requestConfig(grant oauthcore.GrantType) oauthcore.RequestConfig {
	placement := oauthcore.PlacementBody
	if f.credentialsPlacement == "basic_auth_header" {
		placement = oauthcore.PlacementBasicAuthHeader
	}
	return oauthcore.RequestConfig{
		GrantType:        grant,
		AccessTokenUrl:   f.accessTokenUrl,
		RefreshTokenUrl:  f.refreshTokenUrl,
		AuthorizationUrl: f.authorizationUrl,
		CallbackUrl:      f.callbackUrl,
		ClientId:         f.clientId,
		ClientSecret:     f.clientSecret,
		Username:         f.username,
		Password:         f.password,
		Scope:            f.scope,
		State:            f.state,
		PKCE:             f.pkce,

		CredentialsPlacement: placement,
		CredentialsId:        f.credentialsId,

		AutoRefreshToken: f.autoRefresh,
		AutoFetchToken:   f.autoFetch,
	}
}
