package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: a seed can also be typed at a hidden prompt - use PromptForSeed()
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Provider string `envconfig:"XRPL_PROVIDER" default:"faucet"`
	Network  string `envconfig:"XRPL_NETWORK" default:"testnet"`
	RPCURL   string `envconfig:"XRPL_RPC_URL"`
	// FaucetURL overrides the public test network faucet
	FaucetURL string `envconfig:"XRPL_FAUCET_URL"`
	Seed      string `envconfig:"XRPL_SEED"`

	XummAPIKey       string        `envconfig:"XUMM_API_KEY"`
	XummAPISecret    string        `envconfig:"XUMM_API_SECRET"`
	XummAPIURL       string        `envconfig:"XUMM_API_URL"`
	XummPollInterval time.Duration `envconfig:"XUMM_POLL_INTERVAL" default:"2s"`

	Web3AuthClientID    string `envconfig:"WEB3AUTH_CLIENT_ID"`
	Web3AuthEnvironment string `envconfig:"WEB3AUTH_ENVIRONMENT" default:"dev"`
	Web3AuthBridgeURL   string `envconfig:"WEB3AUTH_BRIDGE_URL"`
	Web3AuthIDToken     string `envconfig:"WEB3AUTH_ID_TOKEN"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads a configuration from environment variables without touching the global one
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return c, nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// HasXumm reports whether relay credentials are configured
func (c *Config) HasXumm() bool {
	return c.XummAPIKey != "" && c.XummAPISecret != ""
}

// PromptForSeed prompts the user for a family seed in the terminal.
// The seed is read without echoing (hidden input) and returned trimmed.
func PromptForSeed() (string, error) {
	raw, err := readHidden("Enter wallet seed: ")
	if err != nil {
		return "", fmt.Errorf("failed to read seed: %w", err)
	}
	defer clear(raw)

	seed := strings.TrimSpace(string(raw))
	if seed == "" {
		return "", errors.New("seed cannot be empty")
	}
	return seed, nil
}

func readHidden(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	return term.ReadPassword(int(os.Stdin.Fd()))
}
