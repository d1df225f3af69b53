package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/xrp-genie/docs"
	"github.com/AlexZinkM/xrp-genie/genie"
	"github.com/AlexZinkM/xrp-genie/internal/config"
	"github.com/AlexZinkM/xrp-genie/internal/handler"
	"github.com/AlexZinkM/xrp-genie/internal/metrics"
)

// SetupRouter sets up router with handlers.
// The /xumm routes are only registered when relay credentials are configured.
func SetupRouter(cfg *config.Config, opts ...genie.Option) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts = append(opts, genie.WithMetrics(metrics.New(reg)))

	// Ledger wallet serves account queries and test wallet generation
	ledgerCfg, err := cfg.LedgerWallet()
	if err != nil {
		return nil, err
	}
	ledger, err := genie.New(ledgerCfg, opts...)
	if err != nil {
		return nil, err
	}
	xrplHandler := handler.NewXRPLHandler(ledger.Gateway(), func() (*genie.Genie, error) {
		return genie.New(ledgerCfg, opts...)
	})

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Metrics
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// XRPL endpoints
	mux.HandleFunc("/xrpl/account-info", xrplHandler.AccountInfo)
	mux.HandleFunc("/xrpl/generate", xrplHandler.Generate)
	mux.HandleFunc("/xrpl/transactions", xrplHandler.TransactionHistory)
	mux.HandleFunc("/xrpl/trustlines", xrplHandler.TrustLines)

	// Xumm endpoints
	if cfg.HasXumm() {
		xummCfg, err := cfg.XummWallet()
		if err != nil {
			return nil, err
		}
		xumm, err := genie.New(xummCfg, opts...)
		if err != nil {
			return nil, err
		}
		xummHandler, err := handler.NewXummHandler(xumm)
		if err != nil {
			return nil, err
		}
		mux.HandleFunc("/xumm/signin", xummHandler.SignIn)
		mux.HandleFunc("/xumm/payment", xummHandler.Payment)
		mux.HandleFunc("/xumm/status", xummHandler.Status)
	}

	return mux, nil
}
