package oauthcli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/httpcraft/oauthcore/internal/oauthcore"
)

func newRefreshCommand() *cobra.Command {
	flags := &requestFlags{}
	var grant string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Force a refresh of the stored credentials, regardless of expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager()
			defer mgr.Close()

			req := flags.requestConfig(oauthcore.GrantType(grant))
			result, err := mgr.RefreshToken(context.Background(), flags.collectionUid, req)
			if err != nil {
				slog.Error("refresh failed", "error", err)
				return err
			}
			return printResult(result)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&grant, "grant", "authorization_code", "grant type the stored credentials were issued under")
	return cmd
}
