package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/use-agent/founderscope/browser"
)

var cookieAccount string

var cookieCmd = &cobra.Command{
	Use:   "cookie",
	Short: "Manage the session cookie stored in the OS keyring",
}

var cookieSetCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Store a session cookie (reads stdin when no value is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value string
		if len(args) == 1 {
			value = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return eris.Wrap(err, "cookie: read stdin")
			}
			value = line
		}
		if err := browser.SaveCookie(account(), strings.TrimSpace(value)); err != nil {
			return eris.Wrap(err, "cookie: save")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cookie stored for account %q\n", account())
		return nil
	},
}

var cookieDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored session cookie",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := browser.DeleteCookie(account()); err != nil {
			return eris.Wrap(err, "cookie: delete")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cookie removed for account %q\n", account())
		return nil
	},
}

func account() string {
	if cookieAccount != "" {
		return cookieAccount
	}
	return cfg.Session.KeyringAccount
}

func init() {
	cookieCmd.PersistentFlags().StringVar(&cookieAccount, "account", "", "keyring account (default from config)")
	cookieCmd.AddCommand(cookieSetCmd, cookieDeleteCmd)
	rootCmd.AddCommand(cookieCmd)
}
