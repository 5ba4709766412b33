package oauthcli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/httpcraft/oauthcore/internal/oauthcore"
)

// newTokenCommand reports whatever is currently cached, without fetching
// or refreshing, by forcing AutoFetchToken/AutoRefreshToken off regardless
// of what the shared flags say.
func newTokenCommand() *cobra.Command {
	flags := &requestFlags{}
	var grant string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the currently cached credentials without fetching or refreshing",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager()
			defer mgr.Close()

			req := flags.requestConfig(oauthcore.GrantType(grant))
			req.AutoFetchToken = false
			req.AutoRefreshToken = false
			ctx := context.Background()

			var result oauthcore.Result
			var err error
			switch req.GrantType {
			case oauthcore.GrantAuthorizationCode:
				result, err = mgr.GetTokenUsingAuthorizationCode(ctx, flags.collectionUid, req, false)
			case oauthcore.GrantClientCredentials:
				result, err = mgr.GetTokenUsingClientCredentials(ctx, flags.collectionUid, req, false)
			case oauthcore.GrantPassword:
				result, err = mgr.GetTokenUsingPasswordCredentials(ctx, flags.collectionUid, req, false)
			default:
				return fmt.Errorf("unknown --grant %q", grant)
			}
			if err != nil {
				slog.Error("cache lookup failed", "error", err)
				return err
			}
			return printResult(result)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&grant, "grant", "authorization_code", "authorization_code, client_credentials, or password")
	return cmd
}
