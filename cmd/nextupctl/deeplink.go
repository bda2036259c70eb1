package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nextup-api/pkg/config"
	"nextup-api/pkg/utils"
)

var deeplinkCmd = &cobra.Command{
	Use:   "deeplink",
	Short: "Inspect desktop sign-in deep links",
}

var deeplinkParseCmd = &cobra.Command{
	Use:   "parse [link]",
	Short: "Check a nextup://auth link and show which tokens it carries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		auth, err := utils.ParseDeepLink(args[0], cfg.Google.DeepLinkScheme)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "idToken:     %s\n", redact(auth.IDToken))
		fmt.Fprintf(out, "accessToken: %s\n", redact(auth.AccessToken))
		return nil
	},
}

func init() {
	deeplinkCmd.AddCommand(deeplinkParseCmd)
}

// redact แสดงแค่หัวท้ายของ token
func redact(token string) string {
	if token == "" {
		return "(none)"
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:6] + "..." + token[len(token)-4:] + fmt.Sprintf(" (%d chars)", len(token))
}
