package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quantbot-go/internal/config"
	"quantbot-go/internal/engine"
	"quantbot-go/internal/exchange"
	"quantbot-go/internal/metrics"
	"quantbot-go/internal/signal"
	"quantbot-go/internal/sink"
	"quantbot-go/internal/util"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("QUANTBOT_CONFIG")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}

	bootLog := util.NewLogger("info")
	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Str("path", configPath).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	symbols := []string{cfg.Exchange.Symbol, cfg.Exchange.PairBase, cfg.Exchange.PairQuote}
	feedOpts := []exchange.Option{exchange.WithDepthLevels(cfg.Exchange.DepthLevels)}
	if cfg.Exchange.WSBaseURL != "" {
		feedOpts = append(feedOpts, exchange.WithWSBaseURL(cfg.Exchange.WSBaseURL))
	}
	feed := exchange.NewFeed(cfg.Exchange.Provider, symbols, cfg.Exchange.Symbol, log, feedOpts...)

	events := make(chan signal.Event, 1024)
	go func() {
		if err := feed.Run(ctx, events); err != nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	funding := exchange.NewFundingClient(cfg.Exchange.FundingBaseURL, time.Duration(cfg.Exchange.FundingTTLSecs)*time.Second)
	dispatcher := engine.New(engineParams(cfg), log,
		engine.WithFundingProvider(funding),
		engine.WithSentimentProvider(engine.StaticSentiment(cfg.Exchange.SentimentScore)),
	)

	records := make(chan signal.Record, 256)
	go func() {
		if err := dispatcher.Run(ctx, events, records); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("dispatcher stopped")
			cancel()
		}
	}()

	emitter := sink.NewEmitter(log)
	var recorder *sink.JSONLRecorder
	if cfg.App.RecordsPath != "" {
		recorder, err = sink.NewJSONLRecorder(cfg.App.RecordsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.App.RecordsPath).Msg("open records file")
		}
		defer recorder.Close()
	}

	log.Info().Str("symbol", cfg.Exchange.Symbol).Msg("engine started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case rec := <-records:
			emitter.Emit(rec)
			if recorder != nil {
				recorder.Record(rec)
			}
		}
	}
}

func engineParams(cfg *config.Config) engine.Params {
	return engine.Params{
		Symbol:    cfg.Exchange.Symbol,
		PairBase:  cfg.Exchange.PairBase,
		PairQuote: cfg.Exchange.PairQuote,

		BufferLen: cfg.Engine.BufferLen,

		ImbalanceTopN:      cfg.Engine.ImbalanceTopN,
		ImbalanceThreshold: cfg.Engine.ImbalanceThreshold,

		IcebergSizeThreshold: cfg.Engine.IcebergSizeThreshold,

		VWAPThreshold: cfg.Engine.VWAPThreshold,

		ProfileBucketSize: cfg.Engine.ProfileBucketSize,
		ProfileThreshold:  cfg.Engine.ProfileThreshold,

		SpreadThreshold: cfg.Engine.SpreadThreshold,

		LiquidityBucketSize: cfg.Engine.LiquidityBucketSize,
		LiquidityThreshold:  cfg.Engine.LiquidityThreshold,

		PairWindow:     cfg.Engine.PairWindow,
		PairZThreshold: cfg.Engine.PairZThreshold,

		KalmanR:          cfg.Engine.KalmanR,
		KalmanQ:          cfg.Engine.KalmanQ,
		KalmanZThreshold: cfg.Engine.KalmanZThreshold,

		FundingThreshold: cfg.Engine.FundingThreshold,

		NewsThreshold:    cfg.Engine.NewsThreshold,
		NewsCooldownSecs: cfg.Engine.NewsCooldownSecs,

		SentimentWindow:     cfg.Engine.SentimentWindow,
		VolatilityThreshold: cfg.Engine.VolatilityThreshold,
		ClusterThreshold:    cfg.Engine.ClusterThreshold,

		MACrossFast:     cfg.Engine.MACrossFast,
		MACrossSlow:     cfg.Engine.MACrossSlow,
		RSIPeriod:       cfg.Engine.RSIPeriod,
		BollingerPeriod: cfg.Engine.BollingerPeriod,
		BollingerStd:    cfg.Engine.BollingerStd,
	}
}
