package blockchain

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

func TestGetAddressFromPrivateKeyECDSA(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	addr := GetAddressFromPrivateKeyECDSA(priv)
	if addr == nil {
		t.Fatal("expected non-nil address")
	}
	want := crypto.PubkeyToAddress(priv.PublicKey)
	if *addr != want {
		t.Fatalf("unexpected address: got %s want %s", addr.Hex(), want.Hex())
	}

	if GetAddressFromPrivateKeyECDSA(nil) != nil {
		t.Fatal("expected nil for nil key")
	}
}

func TestParsePrivateKeyECDSA(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(priv))

	addr, parsedKey, err := ParsePrivateKeyECDSA(hexKey)
	if err != nil {
		t.Fatalf("ParsePrivateKeyECDSA: %v", err)
	}
	if addr != crypto.PubkeyToAddress(priv.PublicKey) {
		t.Fatalf("unexpected address: %s", addr.Hex())
	}
	if parsedKey.D.Cmp(priv.D) != 0 {
		t.Fatal("parsed key mismatch")
	}

	if _, _, err := ParsePrivateKeyECDSA("zz"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestEthToWei(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{"1", "1000000000000000000"},
		{1.5, "1500000000000000000"},
		{int64(2), "2000000000000000000"},
		{decimal.NewFromFloat(0.25), "250000000000000000"},
	}

	for _, tc := range tests {
		got, err := EthToWei(tc.input)
		if err != nil {
			t.Fatalf("EthToWei(%v) error: %v", tc.input, err)
		}
		if got.String() != tc.expected {
			t.Fatalf("EthToWei(%v) = %s, want %s", tc.input, got.String(), tc.expected)
		}
	}

	if _, err := EthToWei("not-a-number"); err == nil {
		t.Fatal("expected error for invalid string")
	}
	if _, err := EthToWei(struct{}{}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestWeiToEth(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{"1000000000000000000", "1"},
		{big.NewInt(500000000000000000), "0.5"},
		{0, "0"},
	}

	for _, tc := range tests {
		got := WeiToEth(tc.input)
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Fatalf("WeiToEth(%v) = %s, want %s", tc.input, got.String(), tc.expected)
		}
	}

	if !WeiToEth(struct{}{}).Equal(decimal.Zero) {
		t.Fatal("expected zero for unsupported type")
	}
}
