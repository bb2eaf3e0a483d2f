package config

import (
	"testing"
	"time"
)

const (
	testEventRegistry  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testTicketRegistry = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
)

// TestConfigValidate_AppliesDefaults verifies that Validate applies default
// values for LighthouseURL, IpfsURL, and Network when they are not set.
func TestConfigValidate_AppliesDefaults(t *testing.T) {
	cfg := &Config{
		RPCAddr:            "wss://rpc.example",
		EventRegistryAddr:  testEventRegistry,
		TicketRegistryAddr: testTicketRegistry,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if cfg.LighthouseURL != "https://gateway.lighthouse.storage/ipfs/" {
		t.Fatalf("unexpected LighthouseURL: %s", cfg.LighthouseURL)
	}
	if cfg.IpfsURL != "https://ipfs.io:443" {
		t.Fatalf("unexpected IpfsURL: %s", cfg.IpfsURL)
	}
	if cfg.Network != Sepolia {
		t.Fatalf("expected default Sepolia network, got %#v", cfg.Network)
	}
}

// TestConfigValidate_RequiresRPC verifies that Validate returns an error
// when RPCAddr is not provided.
func TestConfigValidate_RequiresRPC(t *testing.T) {
	cfg := &Config{
		EventRegistryAddr:  testEventRegistry,
		TicketRegistryAddr: testTicketRegistry,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing RPC address")
	}
}

// TestConfigValidate_RequiresRegistries verifies that both contract addresses
// must be well-formed hex addresses.
func TestConfigValidate_RequiresRegistries(t *testing.T) {
	tests := []struct {
		name    string
		events  string
		tickets string
	}{
		{"missing event registry", "", testTicketRegistry},
		{"missing ticket registry", testEventRegistry, ""},
		{"malformed event registry", "0x1234", testTicketRegistry},
		{"malformed ticket registry", testEventRegistry, "not-an-address"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				RPCAddr:            "https://rpc.example",
				EventRegistryAddr:  tc.events,
				TicketRegistryAddr: tc.tickets,
			}
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestTimeoutsWithDefaults verifies zero values are replaced and explicit
// values are preserved.
func TestTimeoutsWithDefaults(t *testing.T) {
	got := Timeouts{}.WithDefaults()
	if got.Dial != 5*time.Second {
		t.Fatalf("unexpected Dial: %v", got.Dial)
	}
	if got.ChainRead != 12*time.Second {
		t.Fatalf("unexpected ChainRead: %v", got.ChainRead)
	}
	if got.ChainSubmit != 25*time.Second {
		t.Fatalf("unexpected ChainSubmit: %v", got.ChainSubmit)
	}
	if got.ReceiptWait != 90*time.Second {
		t.Fatalf("unexpected ReceiptWait: %v", got.ReceiptWait)
	}

	custom := Timeouts{ReceiptWait: time.Minute}.WithDefaults()
	if custom.ReceiptWait != time.Minute {
		t.Fatalf("explicit ReceiptWait overwritten: %v", custom.ReceiptWait)
	}
}

// TestFromEnv verifies environment variables are mapped onto the Config.
func TestFromEnv(t *testing.T) {
	t.Setenv("TICKEX_RPC_ADDR", "wss://rpc.example")
	t.Setenv("TICKEX_EVENT_REGISTRY", testEventRegistry)
	t.Setenv("TICKEX_TICKET_REGISTRY", testTicketRegistry)
	t.Setenv("TICKEX_CHAIN_ID", "11155111")
	t.Setenv("TICKEX_NETWORK_NAME", "sepolia")
	t.Setenv("TICKEX_DEBUG", "true")

	cfg := FromEnv()
	if cfg.RPCAddr != "wss://rpc.example" {
		t.Fatalf("unexpected RPCAddr: %s", cfg.RPCAddr)
	}
	if cfg.EventRegistryAddr != testEventRegistry || cfg.TicketRegistryAddr != testTicketRegistry {
		t.Fatal("registry addresses not mapped")
	}
	if cfg.Network != Sepolia {
		t.Fatalf("unexpected network: %#v", cfg.Network)
	}
	if !cfg.Debug {
		t.Fatal("expected Debug set")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}
