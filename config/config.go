package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"
)

const (
	DefaultReportURL    = "wss://report-worker-2.noscription.org"
	DefaultRelayURL     = "wss://relay.noscription.org/"
	DefaultPostEventURL = "https://api-worker.noscription.org/inscribe/postEvent"
	DefaultDifficulty   = 21
	DefaultMineTimeout  = time.Second
	DefaultWorkers      = 1
)

var ErrMissingSecretKey = errors.New("config: sk is not set")

type Config struct {
	SecretKey       string
	PublicKey       string
	NumberOfWorkers int
	ArbRpcUrl       string

	Difficulty    int
	MineTimeout   time.Duration
	MaxIterations int

	ReportURL    string
	RelayURL     string
	PostEventURL string
	MetricsAddr  string
	LogLevel     logrus.Level
}

// Load reads the given .env files (".env" when none are given) and then the
// environment. A missing .env file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	c := &Config{
		SecretKey:    os.Getenv("sk"),
		PublicKey:    os.Getenv("pk"),
		ArbRpcUrl:    os.Getenv("arbRpcUrl"),
		ReportURL:    getString("reportUrl", DefaultReportURL),
		RelayURL:     getString("relayUrl", DefaultRelayURL),
		PostEventURL: getString("postEventUrl", DefaultPostEventURL),
		MetricsAddr:  os.Getenv("metricsAddr"),
	}

	var err error
	if c.NumberOfWorkers, err = getInt("numberOfWorkers", DefaultWorkers); err != nil {
		return nil, err
	}
	if c.Difficulty, err = getInt("difficulty", DefaultDifficulty); err != nil {
		return nil, err
	}
	if c.MaxIterations, err = getInt("maxIterations", 0); err != nil {
		return nil, err
	}
	if c.MineTimeout, err = getDuration("mineTimeout", DefaultMineTimeout); err != nil {
		return nil, err
	}

	c.LogLevel = logrus.InfoLevel
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if c.LogLevel, err = logrus.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
		}
	}

	return c, nil
}

// Validate checks the settings needed to mine and publish, deriving pk from sk
// when pk is empty.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.PublicKey == "" {
		pk, err := nostr.GetPublicKey(c.SecretKey)
		if err != nil {
			return fmt.Errorf("config: derive pk: %w", err)
		}
		c.PublicKey = pk
	}
	if c.NumberOfWorkers < 1 {
		return fmt.Errorf("config: numberOfWorkers must be at least 1, got %d", c.NumberOfWorkers)
	}
	if c.Difficulty < 0 {
		return fmt.Errorf("config: difficulty must not be negative, got %d", c.Difficulty)
	}
	if c.ArbRpcUrl == "" {
		return errors.New("config: arbRpcUrl is not set")
	}
	return nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
