package cmd

import (
	"fmt"

	"github.com/obiesoto/herald/version"
	"github.com/spf13/cobra"
)

var isDevEnv bool

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "herald",
		Short: `herald is a multi-channel notification dispatcher.

It fans a message out over SMS/MMS (Twilio), email & SMS-to-email carrier
gateways (SMTP), and mobile/web push (Firebase Cloud Messaging, OneSignal),
reporting a per-recipient outcome for every send.`,
	}

	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}
