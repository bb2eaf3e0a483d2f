package storage

import (
	"context"
	"testing"
)

type stubLighthouse struct {
	endpoint string
	cid      string
	payload  []byte
}

func (s *stubLighthouse) Fetch(ctx context.Context, endpoint, cid string) ([]byte, error) {
	s.endpoint = endpoint
	s.cid = cid
	return s.payload, nil
}

type stubIPFS struct {
	hash    string
	payload []byte
}

func (s *stubIPFS) Fetch(ctx context.Context, hash string) ([]byte, error) {
	s.hash = hash
	return s.payload, nil
}

func TestFormatHash(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ipfs://QmTest123", "QmTest123"},
		{"filecoin://bafyTest456", "bafyTest456"},
		{"QmPlain", "QmPlain"},
		{"ipfs://Qm/Test!@#", "QmTest"},
		{"hash=value", "hash=value"},
	}

	for _, tc := range tests {
		if got := formatHash(tc.input); got != tc.expected {
			t.Fatalf("formatHash(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestRemoveSpecialCharacters(t *testing.T) {
	if got := removeSpecialCharacters("abc-123_DEF=!"); got != "abc123DEF=" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestReadFile_RoutesBySchemePrefix(t *testing.T) {
	lighthouse := &stubLighthouse{payload: []byte("from-lighthouse")}
	ipfs := &stubIPFS{payload: []byte("from-ipfs")}
	c := &Client{
		LighthouseURL:     "https://gateway.example/ipfs/",
		lighthouseFetcher: lighthouse,
		ipfsFetcher:       ipfs,
	}
	ctx := context.Background()

	got, err := c.ReadFile(ctx, "filecoin://bafyPoster")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "from-lighthouse" {
		t.Fatalf("unexpected content: %q", got)
	}
	if lighthouse.endpoint != "https://gateway.example/ipfs/" || lighthouse.cid != "bafyPoster" {
		t.Fatalf("unexpected lighthouse call: %q %q", lighthouse.endpoint, lighthouse.cid)
	}

	got, err = c.ReadFile(ctx, "ipfs://QmPoster")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "from-ipfs" {
		t.Fatalf("unexpected content: %q", got)
	}
	if ipfs.hash != "QmPoster" {
		t.Fatalf("unexpected ipfs hash: %q", ipfs.hash)
	}

	// Bare CIDs default to the IPFS path.
	if _, err := c.ReadFile(ctx, "QmBare"); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if ipfs.hash != "QmBare" {
		t.Fatalf("unexpected ipfs hash: %q", ipfs.hash)
	}
}
