package oauthcli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/httpcraft/oauthcore/internal/oauthcore"
)

func newClearCommand() *cobra.Command {
	flags := &requestFlags{}
	var grant string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove any stored credentials and session state for this configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager()
			defer mgr.Close()

			req := flags.requestConfig(oauthcore.GrantType(grant))
			if err := mgr.ClearToken(flags.collectionUid, req, flags.credentialsId); err != nil {
				slog.Error("clear failed", "error", err)
				return err
			}
			fmt.Println("cleared")
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&grant, "grant", "authorization_code", "grant type the stored credentials were issued under")
	return cmd
}
