package oauthcli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/httpcraft/oauthcore/internal/oauthcore"
)

func newLoginCommand() *cobra.Command {
	flags := &requestFlags{}
	var grant string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Acquire a token, using the cache if a fresh one is already stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newManager()
			defer mgr.Close()

			req := flags.requestConfig(oauthcore.GrantType(grant))
			ctx := context.Background()

			var result oauthcore.Result
			var err error
			switch req.GrantType {
			case oauthcore.GrantAuthorizationCode:
				result, err = mgr.GetTokenUsingAuthorizationCode(ctx, flags.collectionUid, req, flags.forceFetch)
			case oauthcore.GrantClientCredentials:
				result, err = mgr.GetTokenUsingClientCredentials(ctx, flags.collectionUid, req, flags.forceFetch)
			case oauthcore.GrantPassword:
				result, err = mgr.GetTokenUsingPasswordCredentials(ctx, flags.collectionUid, req, flags.forceFetch)
			default:
				return fmt.Errorf("unknown --grant %q", grant)
			}
			if err != nil {
				slog.Error("token acquisition failed", "error", err)
				return err
			}
			return printResult(result)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&grant, "grant", "authorization_code", "authorization_code, client_credentials, or password")
	cmd.Flags().BoolVar(&flags.forceFetch, "force", false, "bypass the cache and fetch a fresh token")
	return cmd
}

func printResult(r oauthcore.Result) error {
	out := struct {
		CollectionUid string                 `json:"collectionUid"`
		Url           string                 `json:"url"`
		CredentialsId string                 `json:"credentialsId"`
		HasToken      bool                   `json:"hasToken"`
		Credentials   *oauthcore.TokenBundle `json:"credentials,omitempty"`
	}{
		CollectionUid: r.CollectionUid,
		Url:           r.Url,
		CredentialsId: r.CredentialsId,
		HasToken:      r.Credentials.Present(),
		Credentials:   r.Credentials,
	}
	enc, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}
