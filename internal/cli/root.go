// Package cli implements the sevahub terminal client commands.
package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sevahub/relay/internal/config"
	"github.com/sevahub/relay/internal/tui"
	"github.com/sevahub/relay/internal/version"
)

var (
	flagServer   string
	flagSecure   bool
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "sevahub",
	Short:   "Terminal client for the SevaHub realtime relay",
	Long: `SevaHub is the terminal client for the SevaHub NGO platform's realtime
relay. It joins named rooms to chat with other volunteers, bootstraps direct
peer-to-peer sessions through the relay's WebRTC signaling, and uploads
files to the platform's storage endpoint.`,
	Version: version.Version,
}

// loadConfig resolves the client configuration from the persistent flags,
// the environment, and the defaults.
func loadConfig() *config.Config {
	return config.Load(config.Options{
		Server:     flagServer,
		Secure:     flagSecure,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
	})
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagServer, "server", "", "relay server host[:port] (overrides SEVAHUB_SERVER)")
	pf.BoolVar(&flagSecure, "secure", false, "use TLS (wss/https)")
	pf.StringVar(&flagSTUN, "stun", "", "custom STUN server")
	pf.StringVar(&flagTURN, "turn", "", "custom TURN server")
	pf.StringVar(&flagTURNUser, "turn-user", "", "TURN username")
	pf.StringVar(&flagTURNPass, "turn-pass", "", "TURN password")
}
