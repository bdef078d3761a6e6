// Package config loads this process's configuration from, in increasing
// priority order, built-in defaults, a TOML file, and command-line flags,
// following the override order pullmerge-bchd's loadConfig establishes for
// its own .conf-file-then-flags merge.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/kaspa-tools/txgen/internal/kaspa"
	"github.com/kaspa-tools/txgen/internal/kerrors"
)

// defaultConfigFilename is probed for in the working directory when --config
// is not given, matching the reference generator's "config.toml, if it
// exists" fallback.
const defaultConfigFilename = "config.toml"

// Cli is the command-line surface, parsed with jessevdk/go-flags the way
// every btcsuite-family daemon in this codebase's lineage does.
type Cli struct {
	Network      string `short:"n" long:"network" description:"Network to use (mainnet, testnet10/tn10)"`
	ConfigFile   string `short:"c" long:"config" description:"Path to a TOML configuration file"`
	PrivateKey   string `short:"k" long:"private-key" description:"Private key, 64 hex characters (overrides PRIVATE_KEY_HEX)"`
	RPCEndpoint  string `short:"r" long:"rpc-endpoint" description:"RPC endpoint, overriding the config file and network default"`
	TargetTPS    uint64 `short:"t" long:"target-tps" description:"Target transactions per second"`
	Duration     uint64 `short:"d" long:"duration" description:"Run duration in seconds (0 runs forever)"`
	Unleashed    bool   `short:"u" long:"unleashed" description:"Disable the 100 TPS safety cap"`
	LogLevel     string `short:"l" long:"log-level" description:"Log level (trace, debug, info, warn, error)"`
}

// NetworkConfig holds the network-selection section.
type NetworkConfig struct {
	Network     string `toml:"network"`
	RPCEndpoint string `toml:"rpc_endpoint"`
}

// UtxoConfig holds the UTXO-target and splitting-shape section.
type UtxoConfig struct {
	TargetUTXOCount       int    `toml:"target_utxo_count"`
	AmountPerUTXO         uint64 `toml:"amount_per_utxo"`
	OutputsPerTransaction int    `toml:"outputs_per_transaction"`
	MinChangeSompi        uint64 `toml:"min_change_sompi"`
	RefreshIntervalSecs   uint64 `toml:"refresh_interval_secs"`
}

// SpamConfig holds the paced submission engine's pacing parameters.
type SpamConfig struct {
	TargetTPS       uint64 `toml:"target_tps"`
	DurationSeconds uint64 `toml:"duration_seconds"`
	Unleashed       bool   `toml:"unleashed"`
	MillisPerTick   uint64 `toml:"millis_per_tick"`
}

// FeeConfig holds the sompi-per-gram rates used for each transaction shape.
type FeeConfig struct {
	BaseFeeRate      uint64 `toml:"base_fee_rate"`
	SplittingFeeRate uint64 `toml:"splitting_fee_rate"`
}

// AdvancedConfig holds tunables that rarely need changing from their
// defaults.
type AdvancedConfig struct {
	ClientPoolSize     int    `toml:"client_pool_size"`
	MaxPendingAgeSecs  uint64 `toml:"max_pending_age_secs"`
	MaxInflight        int    `toml:"max_inflight"`
	CoinbaseMaturity   uint64 `toml:"coinbase_maturity"`
	ConfirmationDepth  uint64 `toml:"confirmation_depth"`
}

// LoggingConfig holds the logging backend's settings.
type LoggingConfig struct {
	Level      string `toml:"level"`
	LogFile    string `toml:"log_file"`
	Colored    bool   `toml:"colored"`
	Timestamps bool   `toml:"timestamps"`
}

// Config is the fully-merged, ready-to-use configuration.
type Config struct {
	Network  NetworkConfig  `toml:"network"`
	UTXO     UtxoConfig     `toml:"utxo"`
	Spam     SpamConfig     `toml:"spam"`
	Fees     FeeConfig      `toml:"fees"`
	Advanced AdvancedConfig `toml:"advanced"`
	Logging  LoggingConfig  `toml:"logging"`
}

// Default returns a Config populated with this codebase's built-in
// defaults, matching the reference generator's constants one for one.
func Default() Config {
	return Config{
		Network: NetworkConfig{Network: "testnet10"},
		UTXO: UtxoConfig{
			TargetUTXOCount:       100,
			AmountPerUTXO:         150_000_000,
			OutputsPerTransaction: 10,
			MinChangeSompi:        1_000_000,
			RefreshIntervalSecs:   1,
		},
		Spam: SpamConfig{
			TargetTPS:       50,
			DurationSeconds: 86_400,
			Unleashed:       false,
			MillisPerTick:   10,
		},
		Fees: FeeConfig{
			BaseFeeRate:      1,
			SplittingFeeRate: 10,
		},
		Advanced: AdvancedConfig{
			ClientPoolSize:    8,
			MaxPendingAgeSecs: 3600,
			MaxInflight:       20_000,
			CoinbaseMaturity:  100,
			ConfirmationDepth: 10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Colored:    true,
			Timestamps: true,
		},
	}
}

// ParseCli parses os.Args into a Cli, following go-flags' usual
// print-usage-and-exit behavior on -h/--help or a parse error.
func ParseCli(args []string) (*Cli, error) {
	cli := &Cli{}
	parser := flags.NewParser(cli, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cli, nil
}

// Load builds the final Config and signing key hex by merging, in order:
// built-in defaults, an optional TOML file, a .env file (for
// PRIVATE_KEY_HEX only), and finally cli's explicit overrides.
func Load(cli *Cli) (Config, string, error) {
	_ = godotenv.Load()

	cfg := Default()

	configPath := cli.ConfigFile
	if configPath == "" {
		if _, err := os.Stat(defaultConfigFilename); err == nil {
			configPath = defaultConfigFilename
		}
	}

	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("%w: parse config file %s: %v", kerrors.ErrConfig, configPath, err)
		}
	}

	if cli.Network != "" {
		cfg.Network.Network = cli.Network
	}
	if cli.RPCEndpoint != "" {
		cfg.Network.RPCEndpoint = cli.RPCEndpoint
	}
	if cli.TargetTPS != 0 {
		cfg.Spam.TargetTPS = cli.TargetTPS
	}
	if cli.Duration != 0 {
		cfg.Spam.DurationSeconds = cli.Duration
	}
	if cli.Unleashed {
		cfg.Spam.Unleashed = true
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	privateKey := cli.PrivateKey
	if privateKey == "" {
		privateKey = os.Getenv("PRIVATE_KEY_HEX")
	}
	if privateKey == "" {
		return Config{}, "", fmt.Errorf(
			"%w: private key not provided; set PRIVATE_KEY_HEX or use --private-key", kerrors.ErrConfig)
	}
	if err := validatePrivateKeyHex(privateKey); err != nil {
		return Config{}, "", err
	}

	return cfg, privateKey, nil
}

func validatePrivateKeyHex(s string) error {
	if len(s) != 64 {
		return fmt.Errorf("%w: private key must be 64 hexadecimal characters, got %d", kerrors.ErrConfig, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("%w: private key must be 64 hexadecimal characters: %v", kerrors.ErrConfig, err)
	}
	return nil
}

// ResolveNetwork parses the configured network name, returning
// kerrors.ErrConfig on an unrecognized value.
func (c Config) ResolveNetwork() (kaspa.Network, error) {
	n, ok := kaspa.ParseNetwork(c.Network.Network)
	if !ok {
		return 0, fmt.Errorf("%w: unrecognized network %q", kerrors.ErrConfig, c.Network.Network)
	}
	return n, nil
}

// RPCEndpoint returns the configured RPC endpoint, falling back to n's
// default public endpoint when none was set.
func (c Config) RPCEndpoint(n kaspa.Network) string {
	if c.Network.RPCEndpoint != "" {
		return c.Network.RPCEndpoint
	}
	return n.GRPCURL()
}
