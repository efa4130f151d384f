package config

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "regtest", cfg.Network)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 6, cfg.FeeTargetBlocks)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"unknown network", func(c *Config) { c.Network = "signet" }, ErrInvalidNetwork},
		{"zero fee target", func(c *Config) { c.FeeTargetBlocks = 0 }, ErrInvalidFeeTarget},
		{"negative fee target", func(c *Config) { c.FeeTargetBlocks = -3 }, ErrInvalidFeeTarget},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, Validate(cfg), tc.wantErr)
		})
	}

	// Level matching is case-insensitive.
	cfg := Default()
	cfg.LogLevel = "DEBUG"
	assert.NoError(t, Validate(cfg))
}

func TestChainParams(t *testing.T) {
	params, err := ChainParams("mainnet")
	require.NoError(t, err)
	assert.Equal(t, &chaincfg.MainNetParams, params)

	params, err = ChainParams("testnet")
	require.NoError(t, err)
	assert.Equal(t, &chaincfg.TestNet3Params, params)

	params, err = ChainParams("regtest")
	require.NoError(t, err)
	assert.Equal(t, &chaincfg.RegressionNetParams, params)

	_, err = ChainParams("simnet")
	assert.ErrorIs(t, err, ErrInvalidNetwork)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log := NewLogger("warn", &buf)
	log.Info().Msg("suppressed")
	assert.Empty(t, buf.String())

	log.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")

	// Unknown levels fall back to info.
	buf.Reset()
	log = NewLogger("chatty", &buf)
	log.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	buf.Reset()
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
