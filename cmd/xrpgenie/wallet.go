package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/config"
)

const (
	addressFlag  = "address"
	limitFlag    = "limit"
	currencyFlag = "currency"
	issuerFlag   = "issuer"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Generate a wallet and fund it from the test network faucet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			g, err := openWallet()
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			wallet, err := g.CreateWallet(ctx)
			if err != nil {
				return err
			}
			balance, err := g.GetBalance(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"wallet": wallet, "balance": balance})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import a wallet from XRPL_SEED or a hidden prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			g, err := openWallet()
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			var wallet *genie.Wallet
			if config.Get().Seed != "" {
				wallet, err = g.Connect(ctx)
			} else {
				var seed string
				if seed, err = config.PromptForSeed(); err != nil {
					return err
				}
				wallet, err = g.ConnectExisting(ctx, seed)
			}
			if err != nil {
				return err
			}
			balance, err := g.GetBalance(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"wallet": wallet.Public(), "balance": balance})
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the XRP and token balances of the connected wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			g, err := connectWallet(ctx)
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			balance, err := g.GetBalance(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"address": g.Wallet().Address, "balance": balance})
		},
	}
}

func newFundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund",
		Short: "Request test network XRP for the connected wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			g, err := connectWallet(ctx)
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			balance, err := g.FundAccount(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, balance)
		},
	}
}

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <destination> <amount>",
		Short: "Send XRP, or an issued token with --currency and --issuer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			intent := &genie.PaymentIntent{Destination: args[0], Amount: args[1]}
			intent.Currency, _ = cmd.Flags().GetString(currencyFlag)
			intent.Issuer, _ = cmd.Flags().GetString(issuerFlag)
			if !intent.IsNative() && intent.Issuer == "" {
				return errors.New("--issuer is required for token payments")
			}

			g, err := connectWallet(ctx, genie.WithNotify(printQR))
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			res, err := g.SendPayment(ctx, intent)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}
	cmd.Flags().String(currencyFlag, "", "issued currency code (default XRP)")
	cmd.Flags().String(issuerFlag, "", "issuer of the currency")
	return cmd
}

func newTrustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Create a trust line, the test network USDC line unless --currency and --issuer are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			currency, _ := cmd.Flags().GetString(currencyFlag)
			issuer, _ := cmd.Flags().GetString(issuerFlag)
			limit, _ := cmd.Flags().GetString(limitFlag)

			g, err := connectWallet(ctx, genie.WithNotify(printQR))
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			var res *genie.TransactionResult
			if currency == "" && issuer == "" {
				res, err = g.EstablishUSDCTrustline(ctx)
			} else {
				res, err = g.EstablishTrustline(ctx, &genie.TrustLineIntent{Currency: currency, Issuer: issuer, Limit: limit})
			}
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}
	cmd.Flags().String(currencyFlag, "", "currency code")
	cmd.Flags().String(issuerFlag, "", "issuer address")
	cmd.Flags().String(limitFlag, "1000000000", "trust limit")
	return cmd
}

func newLinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "List trust lines of the wallet or of --address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			address, _ := cmd.Flags().GetString(addressFlag)
			g, err := queryWallet(ctx, address)
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			lines, err := g.TrustLines(ctx, address)
			if err != nil {
				return err
			}
			return printJSON(cmd, lines)
		},
	}
	cmd.Flags().String(addressFlag, "", "account to inspect (default: the connected wallet)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transactions of the wallet or of --address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			address, _ := cmd.Flags().GetString(addressFlag)
			limit, _ := cmd.Flags().GetInt(limitFlag)
			g, err := queryWallet(ctx, address)
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			txs, err := g.TransactionHistory(ctx, address, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, txs)
		},
	}
	cmd.Flags().String(addressFlag, "", "account to inspect (default: the connected wallet)")
	cmd.Flags().Int(limitFlag, 20, "maximum number of transactions")
	return cmd
}

// queryWallet connects the configured wallet, or builds a local key wallet when another account is inspected
func queryWallet(ctx context.Context, address string) (*genie.Genie, error) {
	if address == "" {
		return connectWallet(ctx)
	}
	ledgerCfg, err := config.Get().LedgerWallet()
	if err != nil {
		return nil, err
	}
	return genie.New(ledgerCfg)
}

func newSignMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-message <message>",
		Short: "Sign a message with the wallet key and print the verifiable artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			g, err := connectWallet(ctx)
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			signed, err := g.SignMessage(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, signed)
		},
	}
}
