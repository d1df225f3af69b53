// Command xrpgenie is a command line XRPL wallet over the faucet, Xaman and Web3Auth backends.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/config"
)

const (
	providerFlag = "provider"
	networkFlag  = "network"
	timeoutFlag  = "timeout"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xrpgenie",
	Short: "XRPL wallet over faucet, Xaman and Web3Auth backends",
	Long: `xrpgenie creates, funds and uses XRP Ledger wallets.

The signing backend is selected with XRPL_PROVIDER (faucet, xaman or web3auth)
or --provider. All other settings come from the environment.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	rootCmd.PersistentFlags().String(providerFlag, "", "signing backend: faucet, xaman or web3auth (default XRPL_PROVIDER)")
	rootCmd.PersistentFlags().String(networkFlag, "", "ledger network: testnet or mainnet (default XRPL_NETWORK)")
	rootCmd.PersistentFlags().Duration(timeoutFlag, 5*time.Minute, "overall operation timeout")

	// attach the subcommands
	rootCmd.AddCommand(
		newNewCmd(),
		newImportCmd(),
		newBalanceCmd(),
		newFundCmd(),
		newSendCmd(),
		newTrustCmd(),
		newLinesCmd(),
		newHistoryCmd(),
		newSignMessageCmd(),
		newSignInCmd(),
		newPayRequestCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setup loads configuration and configures the global logger
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	if p, _ := cmd.Flags().GetString(providerFlag); p != "" {
		cfg.Provider = p
	}
	if n, _ := cmd.Flags().GetString(networkFlag); n != "" {
		cfg.Network = n
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

// commandContext is cancelled on SIGINT/SIGTERM or after --timeout
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	timeout, _ := cmd.Flags().GetDuration(timeoutFlag)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// printJSON writes v to stdout as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openWallet builds the configured wallet without connecting it
func openWallet(opts ...genie.Option) (*genie.Genie, error) {
	cfg := config.Get()
	walletCfg, err := cfg.Wallet()
	if err != nil {
		return nil, err
	}
	return genie.New(walletCfg, opts...)
}

// connectWallet builds and connects the configured wallet.
// The faucet backend asks for a seed instead of generating a new identity.
func connectWallet(ctx context.Context, opts ...genie.Option) (*genie.Genie, error) {
	g, err := openWallet(opts...)
	if err != nil {
		return nil, err
	}
	if g.Provider() == genie.ProviderFaucet && config.Get().Seed == "" {
		seed, err := config.PromptForSeed()
		if err != nil {
			return nil, err
		}
		if _, err := g.ConnectExisting(ctx, seed); err != nil {
			return nil, err
		}
		return g, nil
	}
	if _, err := g.Connect(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func printResult(cmd *cobra.Command, res *genie.TransactionResult) error {
	if err := printJSON(cmd, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("transaction failed: %s", res.Error)
	}
	return nil
}
