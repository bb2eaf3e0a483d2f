package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// GetLighthouseFile fetches a blob from a Lighthouse HTTP gateway.
//
// It performs an HTTP GET against {lighthouseEndpoint}{cID} and returns the
// response body. The CID is concatenated directly to the endpoint string, so
// the endpoint must carry its trailing slash if the gateway requires one.
func GetLighthouseFile(ctx context.Context, lighthouseEndpoint, cID string) ([]byte, error) {
	zap.L().Debug("getting lighthouse file", zap.String("cid", cID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lighthouseEndpoint+cID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("error closing lighthouse response", zap.Error(err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lighthouse gateway returned status %d for %s", resp.StatusCode, cID)
	}
	return io.ReadAll(resp.Body)
}
