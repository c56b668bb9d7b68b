package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TYCOON_"

// Config holds the server settings read from the environment.
type Config struct {
	Port              int
	LogLevel          string
	DatabaseURL       string
	MigrationsDir     string
	AuthProvider      string
	FirebaseProjectID string
	FirebaseAPIKey    string
	BoardLayout       string
	StartingBalance   int
	DefaultRoomID     string
	BotTurnInterval   time.Duration
	SaveInterval      time.Duration
	LobbyRateLimit    int
	LobbyRateWindow   time.Duration
	TLSCertFile       string
	TLSKeyFile        string
}

func defaults() *Config {
	return &Config{
		Port:            8080,
		LogLevel:        "info",
		DatabaseURL:     "file://tycoon-state.json.zst",
		MigrationsDir:   "./migrations",
		AuthProvider:    "none",
		BoardLayout:     "classic",
		StartingBalance: 1500,
		DefaultRoomID:   "default",
		BotTurnInterval: 3 * time.Second,
		LobbyRateLimit:  5,
		LobbyRateWindow: time.Hour,
	}
}

// Load reads a .env file from the working directory if one exists and then
// builds a Config from TYCOON_* environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := defaults()
	var err error

	if cfg.Port, err = intVar("PORT", cfg.Port); err != nil {
		return nil, err
	}
	cfg.LogLevel = stringVar("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseURL = stringVar("DATABASE_URL", cfg.DatabaseURL)
	cfg.MigrationsDir = stringVar("MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.AuthProvider = stringVar("AUTH_PROVIDER", cfg.AuthProvider)
	cfg.FirebaseProjectID = stringVar("FIREBASE_PROJECT_ID", cfg.FirebaseProjectID)
	cfg.FirebaseAPIKey = stringVar("FIREBASE_API_KEY", cfg.FirebaseAPIKey)
	cfg.BoardLayout = stringVar("BOARD_LAYOUT", cfg.BoardLayout)
	if cfg.StartingBalance, err = intVar("STARTING_BALANCE", cfg.StartingBalance); err != nil {
		return nil, err
	}
	cfg.DefaultRoomID = stringVar("DEFAULT_ROOM", cfg.DefaultRoomID)
	if cfg.BotTurnInterval, err = durationVar("BOT_TURN_INTERVAL", cfg.BotTurnInterval); err != nil {
		return nil, err
	}
	if cfg.SaveInterval, err = durationVar("SAVE_INTERVAL", cfg.SaveInterval); err != nil {
		return nil, err
	}
	if cfg.LobbyRateLimit, err = intVar("LOBBY_RATE_LIMIT", cfg.LobbyRateLimit); err != nil {
		return nil, err
	}
	if cfg.LobbyRateWindow, err = durationVar("LOBBY_RATE_WINDOW", cfg.LobbyRateWindow); err != nil {
		return nil, err
	}
	cfg.TLSCertFile = stringVar("TLS_CERT_FILE", cfg.TLSCertFile)
	cfg.TLSKeyFile = stringVar("TLS_KEY_FILE", cfg.TLSKeyFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught while parsing.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("invalid starting balance: %d", c.StartingBalance)
	}
	if c.BotTurnInterval <= 0 {
		return fmt.Errorf("invalid bot turn interval: %s", c.BotTurnInterval)
	}
	if c.SaveInterval < 0 {
		return fmt.Errorf("invalid save interval: %s", c.SaveInterval)
	}
	if c.LobbyRateLimit <= 0 || c.LobbyRateWindow <= 0 {
		return fmt.Errorf("invalid lobby rate limit: %d per %s", c.LobbyRateLimit, c.LobbyRateWindow)
	}
	switch c.AuthProvider {
	case "none", "insecure":
	case "firebase":
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("%sFIREBASE_PROJECT_ID must be set for the firebase auth provider", envPrefix)
		}
	default:
		return fmt.Errorf("unknown auth provider: %s", c.AuthProvider)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("both %sTLS_CERT_FILE and %sTLS_KEY_FILE must be set", envPrefix, envPrefix)
	}
	return nil
}

func stringVar(name string, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		return v
	}
	return fallback
}

func intVar(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s%s: %v", envPrefix, name, err)
	}
	return i, nil
}

func durationVar(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s%s: %v", envPrefix, name, err)
	}
	return d, nil
}
