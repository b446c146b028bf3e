// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	RecordsPath string `yaml:"records_path"`
}

// Exchange describes the market-data connectivity parameters the engine expects.
type Exchange struct {
	Provider       string
	Symbol         string
	PairBase       string  `yaml:"pair_base"`
	PairQuote      string  `yaml:"pair_quote"`
	DepthLevels    int     `yaml:"depth_levels"`
	WSBaseURL      string  `yaml:"ws_base_url"`
	FundingBaseURL string  `yaml:"funding_base_url"`
	FundingTTLSecs int     `yaml:"funding_ttl_secs"`
	SentimentScore float64 `yaml:"sentiment_score"`
}

// Engine groups every tunable threshold and window the dispatcher's detectors use.
type Engine struct {
	BufferLen int `yaml:"buffer_len"`

	ImbalanceTopN      int     `yaml:"imbalance_top_n"`
	ImbalanceThreshold float64 `yaml:"imbalance_threshold"`

	IcebergSizeThreshold float64 `yaml:"iceberg_size_threshold"`

	VWAPThreshold float64 `yaml:"vwap_threshold"`

	ProfileBucketSize float64 `yaml:"profile_bucket_size"`
	ProfileThreshold  float64 `yaml:"profile_threshold"`

	SpreadThreshold float64 `yaml:"spread_threshold"`

	LiquidityBucketSize float64 `yaml:"liquidity_bucket_size"`
	LiquidityThreshold  float64 `yaml:"liquidity_threshold"`

	PairWindow     int     `yaml:"pair_window"`
	PairZThreshold float64 `yaml:"pair_z_threshold"`

	KalmanR          float64 `yaml:"kalman_r"`
	KalmanQ          float64 `yaml:"kalman_q"`
	KalmanZThreshold float64 `yaml:"kalman_z_threshold"`

	FundingThreshold float64 `yaml:"funding_threshold"`

	NewsThreshold    float64 `yaml:"news_threshold"`
	NewsCooldownSecs int     `yaml:"news_cooldown_secs"`

	SentimentWindow     int     `yaml:"sentiment_window"`
	VolatilityThreshold float64 `yaml:"volatility_threshold"`
	ClusterThreshold    float64 `yaml:"cluster_threshold"`

	MACrossFast     int     `yaml:"ma_cross_fast"`
	MACrossSlow     int     `yaml:"ma_cross_slow"`
	RSIPeriod       int     `yaml:"rsi_period"`
	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerStd    float64 `yaml:"bollinger_std"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Engine   Engine   `yaml:"engine"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
