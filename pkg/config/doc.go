// Package config defines the runtime configuration for the SDK, including
// Ethereum network settings, RPC endpoint, marketplace contract addresses,
// storage gateways, debug mode, and operation timeouts. It also provides
// validation, defaulting, and environment loading helpers.
package config
