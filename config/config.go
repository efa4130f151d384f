// Package config holds the explicit process configuration passed to
// component constructors at startup. There is no ambient mutable global;
// network selection and upstream endpoints travel through a Config value.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"

	"github.com/bitvaultorg/libmultisig-go/network"
)

// Config is the process configuration for the multisig engine.
type Config struct {
	// Network selects the chain: "mainnet", "testnet" or "regtest".
	Network string `json:"network"`

	// DataDir is the directory holding the key-value store.
	DataDir string `json:"data_dir"`

	// RPC configures the upstream Bitcoin node.
	RPC network.RPCConfig `json:"rpc"`

	// FeeTargetBlocks is the confirmation target used when a transaction
	// request does not carry an explicit fee rate.
	FeeTargetBlocks int `json:"fee_target_blocks"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"log_level"`
}

// Default returns a regtest configuration suitable for local development.
func Default() Config {
	return Config{
		Network:         "regtest",
		DataDir:         defaultDataDir(),
		FeeTargetBlocks: 6,
		LogLevel:        "info",
	}
}

// defaultDataDir places the store under the user's home directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libmultisig"
	}
	return home + string(os.PathSeparator) + ".libmultisig"
}

// ChainParams maps a network name to btcd chain parameters.
func ChainParams(net string) (*chaincfg.Params, error) {
	switch net {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, net)
	}
}

// NewLogger builds a console logger at the given level. An unknown level
// falls back to info.
func NewLogger(level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
