package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"coinex_bot/internal/predict"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
	accessIDENV       = "COINEX_ACCESS_ID"
	secretENV         = "COINEX_SECRET"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Exchange struct {
		AccessID string `yaml:"access_id"`
		Secret   string `yaml:"secret"`
		BaseURL  string `yaml:"base_url"`
		WSURL    string `yaml:"ws_url"`
	} `yaml:"exchange"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		AdminAddr string `yaml:"admin_addr"`
	} `yaml:"service"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Trading struct {
		Market       string    `yaml:"market"`
		BalanceCcy   string    `yaml:"balance_ccy"`
		Interval     string    `yaml:"interval"`
		CandleLimit  int       `yaml:"candle_limit"`
		TotalCapital float64   `yaml:"total_capital"`
		RiskFraction float64   `yaml:"risk_fraction"`
		BuyLevels    []float64 `yaml:"buy_levels"`
		SellLevels   []float64 `yaml:"sell_levels"`
	} `yaml:"trading"`

	Features predict.FeatureConfig `yaml:"features"`

	// Паузы цикла — только из ENV (yaml.v2 не умеет time.Duration)
	Cadence        time.Duration
	EmptyCooldown  time.Duration
	PredictTimeout time.Duration
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Cadence:        durationFromEnv("CYCLE_CADENCE", "300s"),
		EmptyCooldown:  durationFromEnv("EMPTY_DATA_COOLDOWN", "60s"),
		PredictTimeout: durationFromEnv("PREDICT_TIMEOUT", "30s"),
		Features:       predict.DefaultFeatureConfig(),
	}
	config.Trading.BalanceCcy = "USDT"
	config.Trading.Interval = getenvDefault("CANDLE_INTERVAL", "5min")
	config.Trading.CandleLimit = intFromEnv("CANDLE_LIMIT", 300)
	config.Service.AdminAddr = getenvDefault("ADMIN_ADDR", ":8080")

	if err = decoder.Decode(&config); err != nil {
		return nil, errors.Wrap(err, "decode config file")
	}

	if v := os.Getenv(tokenTelegramENV); v != "" {
		config.Telegram.Token = v
	}
	if v := os.Getenv(chatIDTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if v := os.Getenv(accessIDENV); v != "" {
		config.Exchange.AccessID = v
	}
	if v := os.Getenv(secretENV); v != "" {
		config.Exchange.Secret = v
	}
	if v := os.Getenv(databaseDSN); v != "" {
		config.DB = v
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// validate — фатальные проверки: без кредов и рынка процесс не стартует.
func (c *Config) validate() error {
	switch {
	case c.Exchange.AccessID == "":
		return fmt.Errorf("exchange access_id is required")
	case c.Exchange.Secret == "":
		return fmt.Errorf("exchange secret is required")
	case c.Telegram.Token == "":
		return fmt.Errorf("telegram token is required")
	case c.Telegram.ChatID == 0:
		return fmt.Errorf("telegram chat_id is required")
	case c.Trading.Market == "":
		return fmt.Errorf("trading market is required")
	case c.Trading.TotalCapital <= 0:
		return fmt.Errorf("total_capital must be > 0")
	case c.Trading.RiskFraction <= 0 || c.Trading.RiskFraction > 1:
		return fmt.Errorf("risk_fraction must be in (0, 1]")
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
