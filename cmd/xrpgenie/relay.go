package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/config"
	"github.com/AlexZinkM/xrp-genie/internal/model"
	"github.com/AlexZinkM/xrp-genie/internal/provider"
)

// printQR shows a signing request on stderr so stdout stays machine readable
func printQR(req *genie.SigningRequest) {
	if qr, err := provider.RenderQR(req); err == nil {
		fmt.Fprintln(os.Stderr, qr)
	}
	fmt.Fprintf(os.Stderr, "Open in Xaman: %s\n", req.DeepLink)
}

// xamanWallet builds a remote approval wallet regardless of XRPL_PROVIDER
func xamanWallet() (*genie.Genie, error) {
	cfg := config.Get()
	if !cfg.HasXumm() {
		return nil, errors.Wrap(model.ErrConfig, "XUMM_API_KEY and XUMM_API_SECRET are required")
	}
	xummCfg, err := cfg.XummWallet()
	if err != nil {
		return nil, err
	}
	return genie.New(xummCfg, genie.WithNotify(printQR))
}

func newSignInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin",
		Short: "Sign in with the Xaman app and print the approved account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			g, err := xamanWallet()
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			wallet, err := g.Connect(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, wallet)
		},
	}
}

func newPayRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay-request <destination> <amount>",
		Short: "Create an XRP payment request for the Xaman app and wait for it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			from, _ := cmd.Flags().GetString(addressFlag)
			g, err := xamanWallet()
			if err != nil {
				return err
			}
			defer g.Disconnect(ctx)

			req, err := g.CreatePaymentRequestFrom(ctx, from, args[0], args[1])
			if err != nil {
				return err
			}

			if wait, _ := cmd.Flags().GetBool("wait"); !wait {
				return printJSON(cmd, req)
			}
			state, err := g.AwaitRequest(ctx, req.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd, state)
		},
	}
	cmd.Flags().String(addressFlag, "", "source account (default: whichever account approves)")
	cmd.Flags().Bool("wait", true, "wait until the request is resolved")
	return cmd
}
