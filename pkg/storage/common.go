package storage

import (
	"context"
	"regexp"
	"strings"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// FilecoinPrefix is the URI scheme prefix recognized for Filecoin/Lighthouse content.
	FilecoinPrefix = "filecoin://"
)

// Storage is a minimal interface for backends able to fetch and pin blobs by URI.
type Storage interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
	UploadJSON(ctx context.Context, data interface{}) (string, error)
}

// LighthouseFetcher fetches content from a Lighthouse gateway.
type LighthouseFetcher interface {
	Fetch(ctx context.Context, endpoint, cid string) ([]byte, error)
}

// IPFSFetcher fetches content addressed by CID from IPFS.
type IPFSFetcher interface {
	Fetch(ctx context.Context, hash string) ([]byte, error)
}

// Client aggregates the configured storage backends.
type Client struct {
	// HttpApi is a connected Kubo HTTP API client used for IPFS reads and pins.
	*rpc.HttpApi
	// LighthouseURL is the base URL of the Lighthouse HTTP gateway.
	LighthouseURL string

	lighthouseFetcher LighthouseFetcher
	ipfsFetcher       IPFSFetcher
}

// NewStorage constructs a storage client using the provided IPFS API endpoint
// and Lighthouse gateway URL. If the IPFS client fails to initialize, the
// error is logged and IPFS reads will fail until reconfigured.
func NewStorage(ipfsURL, lighthouseURL string) *Client {
	var err error
	s := new(Client)
	s.HttpApi, err = NewIPFSClient(ipfsURL)
	s.LighthouseURL = lighthouseURL
	s.lighthouseFetcher = gatewayLighthouseFetcher{}
	s.ipfsFetcher = newIPFSFetcher(s.HttpApi)
	if err != nil {
		zap.L().Error(err.Error())
	}
	return s
}

// ReadFile fetches the content behind the given URI. URIs with the
// "filecoin://" prefix go through the Lighthouse gateway; everything else is
// treated as IPFS content and fetched with the Kubo client. The URI is
// normalized with formatHash before retrieval.
func (s *Client) ReadFile(ctx context.Context, uri string) (rawFile []byte, err error) {
	if s.lighthouseFetcher == nil {
		s.lighthouseFetcher = gatewayLighthouseFetcher{}
	}
	if s.ipfsFetcher == nil {
		s.ipfsFetcher = newIPFSFetcher(s.HttpApi)
	}

	if strings.HasPrefix(uri, FilecoinPrefix) {
		rawFile, err = s.lighthouseFetcher.Fetch(ctx, s.LighthouseURL, formatHash(uri))
	} else {
		rawFile, err = s.ipfsFetcher.Fetch(ctx, formatHash(uri))
	}
	return rawFile, err
}

// gatewayLighthouseFetcher is the production LighthouseFetcher backed by the
// HTTP gateway.
type gatewayLighthouseFetcher struct{}

func (gatewayLighthouseFetcher) Fetch(ctx context.Context, endpoint, cid string) ([]byte, error) {
	return GetLighthouseFile(ctx, endpoint, cid)
}

// formatHash strips known URI scheme prefixes and any non-alphanumeric
// characters (except '=') to produce a clean CID string for the backends.
func formatHash(hash string) string {
	hash = strings.Replace(hash, IpfsPrefix, "", -1)
	hash = strings.Replace(hash, FilecoinPrefix, "", -1)
	hash = removeSpecialCharacters(hash)
	return hash
}

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString. Used to sanitize incoming CIDs.
func removeSpecialCharacters(pString string) string {
	reg := regexp.MustCompile("[^a-zA-Z0-9=]")
	return reg.ReplaceAllString(pString, "")
}
