// Command sniper watches pump.fun for new token launches, scores them
// and trades the ones that pass admission, with automated exits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-pump-sniper/internal/config"
	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/execution"
	"solana-pump-sniper/internal/feed"
	"solana-pump-sniper/internal/observability"
	"solana-pump-sniper/internal/oracle"
	"solana-pump-sniper/internal/solana"
	"solana-pump-sniper/internal/storage"
	chstore "solana-pump-sniper/internal/storage/clickhouse"
	"solana-pump-sniper/internal/storage/memory"
	pgstore "solana-pump-sniper/internal/storage/postgres"
	"solana-pump-sniper/internal/trading"
)

const statusLogInterval = 60 * time.Second

func main() {
	logger := log.New(os.Stdout, "[sniper] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	if cfg.SimulationMode {
		logger.Printf("Running in SIMULATION mode with %.2f SOL", cfg.SimBalanceSOL)
	} else {
		logger.Printf("Running in LIVE mode")
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, logger, cfg)

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Shutdown complete")
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	rpc := solana.NewHTTPClient(cfg.RPCURL,
		solana.WithLatencyObserver(observability.RecordRPCLatency))

	wsCfg := solana.DefaultWSConfig()
	wsCfg.OnReconnect = observability.RecordWSReconnect
	ws, err := solana.NewLogStream(ctx, cfg.WSURL, &wsCfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	orc := oracle.New(rpc)

	// Journal stores. The in-memory store always runs; PostgreSQL and
	// ClickHouse join when configured.
	stores := []storage.TradeRecordStore{memory.NewTradeRecordStore()}
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		stores = append(stores, pgstore.NewTradeRecordStore(pool))
		logger.Println("PostgreSQL journal enabled")
	}
	if cfg.ClickHouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		stores = append(stores, chstore.NewTradeRecordStore(conn))
		logger.Println("ClickHouse journal enabled")
	}

	var gateway execution.Gateway
	if cfg.SimulationMode {
		gateway = execution.NewSimGateway(cfg.SimBalanceSOL)
	} else {
		signer, err := execution.NewKeypairSigner(cfg.PrivateKey)
		if err != nil {
			return err
		}
		logger.Printf("Trading wallet: %s", signer.Pubkey())
		gateway = execution.NewRPCGateway(rpc, signer, orc.GetPrice, cfg.PriorityFeeMicroLamports)
	}

	gate := trading.NewGate(trading.GateConfig{
		MinSafetyScore:             cfg.MinSafetyScore,
		MinMarketCapSOL:            cfg.MinMarketCapSOL,
		MaxMarketCapSOL:            cfg.MaxMarketCapSOL,
		MinLiquiditySOL:            cfg.MinLiquiditySOL,
		MinHolders:                 cfg.MinHolders,
		MaxHolders:                 cfg.MaxHolders,
		RequireSocialLinks:         cfg.RequireSocialLinks,
		RequireCreatorVerification: cfg.RequireCreatorVerification,
		CooldownMs:                 cfg.CooldownMs,
		MaxTradesPerHour:           cfg.MaxTradesPerHour,
	})
	ledger := trading.NewLedger(cfg.TrailingStopPct)
	trader := trading.NewTrader(trading.Config{
		BuyAmountSOL:    cfg.BuyAmountSOL,
		MaxSlippagePct:  cfg.MaxSlippagePct,
		TakeProfitPct:   cfg.TakeProfitPct,
		StopLossPct:     cfg.StopLossPct,
		TrailingStopPct: cfg.TrailingStopPct,
		SimulationMode:  cfg.SimulationMode,
	}, gate, ledger, orc, gateway, stores...)

	dispatcher := feed.NewDispatcher(trader.HandleLaunch, feed.DefaultQueueSize, feed.DefaultWorkers)
	monitor := feed.NewMonitor(ws, rpc, dispatcher)

	if cfg.MetricsAddr != "" {
		startHTTPServer(logger, cfg.MetricsAddr, trader)
	}

	exits := trading.NewExitEngine(trader, time.Duration(cfg.ExitCheckIntervalMs)*time.Millisecond)
	go exits.Run(ctx)
	go statusLoop(ctx, logger, trader)

	logger.Printf("Watching pump.fun launches on %s", cfg.WSURL)
	return monitor.Run(ctx)
}

// startHTTPServer serves Prometheus metrics, health, the position
// status snapshot and the manual sell endpoint.
func startHTTPServer(logger *log.Logger, addr string, trader *trading.Trader) {
	mux := newHTTPMux(logger, trader)
	go func() {
		logger.Printf("Starting metrics server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()
}

func newHTTPMux(logger *log.Logger, trader *trading.Trader) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(trader.Status())
	})
	mux.HandleFunc("/sell", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		mint := r.URL.Query().Get("mint")
		if mint == "" {
			http.Error(w, "missing mint parameter", http.StatusBadRequest)
			return
		}
		logger.Printf("Manual sell requested for %s", mint)
		if err := trader.ExecuteSell(r.Context(), mint, domain.ExitReasonManual); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, trading.ErrPositionNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("sold"))
	})
	return mux
}

// statusLoop logs the runtime snapshot once a minute and keeps the
// uptime counter ticking.
func statusLoop(ctx context.Context, logger *log.Logger, trader *trading.Trader) {
	statusTicker := time.NewTicker(statusLogInterval)
	uptimeTicker := time.NewTicker(time.Second)
	defer statusTicker.Stop()
	defer uptimeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-uptimeTicker.C:
			observability.DefaultMetrics.UptimeSeconds.Inc()
		case <-statusTicker.C:
			st := trader.Status()
			logger.Printf("Status: positions=%d trades_today=%d/%d buy_in_flight=%v sell_in_flight=%v sim=%v",
				st.OpenPositions, st.DailyTrades, st.DailyCap, st.BuyInFlight, st.SellInFlight, st.SimulationMode)
		}
	}
}
