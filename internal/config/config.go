package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"WaveSentinel/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Binance struct {
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		SecretKey string        `yaml:"secret_key"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"binance"`
	Analysis struct {
		DefaultInterval string   `yaml:"default_interval"`
		DefaultLimit    int      `yaml:"default_limit"`
		Watchlist       []string `yaml:"watchlist"`
		Intervals       []string `yaml:"intervals"`
		Concurrency     int      `yaml:"concurrency"`
	} `yaml:"analysis"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Alert struct {
		MinConfidence int `yaml:"min_confidence"`
	} `yaml:"alert"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string        `yaml:"sqlite_path"`
		CacheTTL   time.Duration `yaml:"cache_ttl"`
	} `yaml:"database"`
	Log   logging.Config `yaml:"log"`
	Proxy string         `yaml:"proxy"`
}

// ValidIntervals lists the kline intervals the exchange accepts.
var ValidIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// MaxLimit is the largest kline count one request may ask for.
const MaxLimit = 1000

// Load reads config from a YAML file, then .env, then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Zero is meaningful for these two, so they are seeded before the file
	// is decoded instead of filled in afterwards.
	cfg.Alert.MinConfidence = 75
	cfg.Database.CacheTTL = time.Minute

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Binance.BaseURL = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		cfg.Binance.SecretKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Analysis.Watchlist = splitList(v)
	}
	if v := os.Getenv("SCAN_INTERVALS"); v != "" {
		cfg.Analysis.Intervals = splitList(v)
	}
	if v := os.Getenv("ALERT_MIN_CONFIDENCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Alert.MinConfidence = n
		}
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Binance.BaseURL == "" {
		cfg.Binance.BaseURL = "https://api.binance.com"
	}
	if cfg.Binance.Timeout == 0 {
		cfg.Binance.Timeout = 30 * time.Second
	}
	if cfg.Analysis.DefaultInterval == "" {
		cfg.Analysis.DefaultInterval = "1d"
	}
	if cfg.Analysis.DefaultLimit == 0 {
		cfg.Analysis.DefaultLimit = 100
	}
	if len(cfg.Analysis.Watchlist) == 0 {
		cfg.Analysis.Watchlist = []string{
			"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT", "XRPUSDT",
			"SOLUSDT", "DOGEUSDT", "DOTUSDT", "SHIBUSDT", "MATICUSDT",
		}
	}
	if len(cfg.Analysis.Intervals) == 0 {
		cfg.Analysis.Intervals = []string{"1d", "4h"}
	}
	if cfg.Analysis.Concurrency == 0 {
		cfg.Analysis.Concurrency = 4
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 5 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/wave_sentinel.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if !ValidIntervals[c.Analysis.DefaultInterval] {
		return fmt.Errorf("analysis.default_interval %q is not a valid interval", c.Analysis.DefaultInterval)
	}
	for _, iv := range c.Analysis.Intervals {
		if !ValidIntervals[iv] {
			return fmt.Errorf("analysis.intervals: %q is not a valid interval", iv)
		}
	}
	if c.Analysis.DefaultLimit <= 0 || c.Analysis.DefaultLimit > MaxLimit {
		return fmt.Errorf("analysis.default_limit must be in 1..%d", MaxLimit)
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be positive")
	}
	if c.Alert.MinConfidence < 0 || c.Alert.MinConfidence > 100 {
		return fmt.Errorf("alert.min_confidence must be in 0..100")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Database.CacheTTL < 0 {
		return fmt.Errorf("database.cache_ttl must not be negative")
	}
	return nil
}
