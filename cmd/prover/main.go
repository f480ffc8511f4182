package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/exitwatch/prover/internal/adapters"
	"github.com/exitwatch/prover/internal/beacon"
	"github.com/exitwatch/prover/internal/config"
	"github.com/exitwatch/prover/internal/cycle"
	"github.com/exitwatch/prover/internal/deadline"
	"github.com/exitwatch/prover/internal/gas"
	"github.com/exitwatch/prover/internal/logger"
	"github.com/exitwatch/prover/internal/metrics"
	"github.com/exitwatch/prover/internal/ports"
	"github.com/exitwatch/prover/internal/prover"
	"github.com/exitwatch/prover/internal/rootprovider"
	"github.com/exitwatch/prover/internal/tx"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().Uint64("chainId", cfg.ChainID).Str("fork", cfg.ForkName).Msg("starting prover")

	consensusClients := make([]ports.ConsensusClient, 0, len(cfg.CLAPIURLs))
	for _, url := range cfg.CLAPIURLs {
		client, err := adapters.NewConsensusHTTPAdapter(ctx, url, cfg.CLResponseTimeout)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msg("failed to dial consensus endpoint")
			os.Exit(1)
		}
		consensusClients = append(consensusClients, client)
	}

	beaconReader := beacon.New(consensusClients, beacon.Config{
		RetryDelay:      cfg.CLRetryDelay,
		ResponseTimeout: cfg.CLResponseTimeout,
		MaxRetries:      cfg.CLMaxRetries,
	}, beacon.SSZDecoder{})

	// EL failover across cfg.ELRPCURLs is left to a future ExecutionClient
	// wrapper; the first reachable endpoint is used for this run.
	var execClient ports.ExecutionClient
	for _, url := range cfg.ELRPCURLs {
		client, dialErr := adapters.NewExecutionHTTPAdapter(ctx, url)
		if dialErr != nil {
			log.Warn().Err(dialErr).Str("url", url).Msg("failed to dial execution endpoint, trying next")
			continue
		}
		execClient = client
		break
	}
	if execClient == nil {
		log.Error().Msg("no execution endpoint could be reached")
		os.Exit(1)
	}

	beaconCfg, err := beaconReader.GetConfig(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch beacon config")
		os.Exit(1)
	}

	contracts, err := adapters.NewContractClient(ctx, execClient, cfg.LidoLocatorAddress)
	if err != nil {
		log.Error().Err(err).Msg("failed to build contract client")
		os.Exit(1)
	}
	shardCommitteePeriod, err := contracts.Locator().ShardCommitteePeriodInSeconds(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch shard committee period from verifier contract")
		os.Exit(1)
	}
	beaconCfg.ShardCommitteePeriodInSeconds = shardCommitteePeriod

	registries, err := deadline.BuildRegistryTable(ctx, contracts)
	if err != nil {
		log.Error().Err(err).Msg("failed to build node operator registry dispatch table")
		os.Exit(1)
	}

	var signer ports.Signer
	if cfg.TxSignerPrivateKey != "" {
		signer, err = adapters.NewPrivateKeySigner(cfg.TxSignerPrivateKey)
		if err != nil {
			log.Error().Err(err).Msg("failed to load transaction signer")
			os.Exit(1)
		}
	} else {
		log.Warn().Msg("no TX_SIGNER_PRIVATE_KEY configured; running in emulation-only mode")
	}

	gasManager := gas.New(gas.Config{
		BlocksPerHour:         uint64(time.Hour / (time.Duration(beaconCfg.SecondsPerSlot) * time.Second)),
		HistoryDays:           cfg.TxGasFeeHistoryDays,
		HistoryPercentile:     cfg.TxGasFeeHistoryPercentile,
		MaxBlockCount:         1024,
		PriorityFeePercentile: cfg.TxGasPriorityFeePercentile,
		MinPriorityFee:        uint256.NewInt(cfg.TxMinGasPriorityFee),
		MaxPriorityFee:        uint256.NewInt(cfg.TxMaxGasPriorityFee),
	}, execClient)

	executor := tx.New(tx.Config{
		DryRun:         cfg.DryRun,
		HardGasLimit:   cfg.TxGasLimit,
		Confirmations:  cfg.TxConfirmations,
		ConfirmTimeout: cfg.TxMiningWaitingTimeout,
		RetryDelay:     cfg.ELRetryDelay,
		ChainID:        cfg.ChainID,
	}, execClient, gasManager, signer, log)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	proverCore := prover.New(
		beaconCfg,
		prover.Config{ValidatorBatchSize: cfg.ValidatorBatchSize},
		beaconReader,
		contracts,
		execClient,
		executor,
		registries,
		m,
		log,
	)

	persister := adapters.NewFilePersister(persisterPath())

	roots := rootprovider.New(rootprovider.Config{
		Bootstrap:         rootprovider.Bootstrap{Root: cfg.StartRoot, Slot: cfg.StartSlot, Epoch: cfg.StartEpoch},
		StartLookbackDays: cfg.StartLookbackDays,
		SecondsPerSlot:    beaconCfg.SecondsPerSlot,
	}, beaconReader, persister, log)

	driver := cycle.New(cycle.Config{
		SleepInterval: cfg.DaemonSleepInterval,
		DryRun:        cfg.DryRun,
	}, roots, beaconReader, execClient, proverCore, persister, m, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped unexpectedly")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go driver.Run(ctx)

	sig := <-sigCh
	log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func persisterPath() string {
	if p := os.Getenv("LAST_PROCESSED_ROOT_PATH"); p != "" {
		return p
	}
	return "lastProcessedRoot.json"
}

