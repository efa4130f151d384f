package network

import "fmt"

// RPCConfig holds the connection parameters for a Bitcoin node's JSON-RPC
// interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets contains default RPC configurations for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "msig", Password: "msig"},
	"testnet": {URL: "http://localhost:18332", User: "msig", Password: "msig"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing
// priority:
//  1. explicit values (highest priority)
//  2. environment variables (MSIG_RPC_URL, MSIG_RPC_USER, MSIG_RPC_PASS)
//  3. network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(explicit *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env["MSIG_RPC_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["MSIG_RPC_USER"]; ok && v != "" {
			result.User = v
		}
		if v, ok := env["MSIG_RPC_PASS"]; ok && v != "" {
			result.Password = v
		}
	}

	if explicit != nil {
		if explicit.URL != "" {
			result.URL = explicit.URL
		}
		if explicit.User != "" {
			result.User = explicit.User
		}
		if explicit.Password != "" {
			result.Password = explicit.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: no RPC URL configured for network %q", network)
	}
	return &result, nil
}
