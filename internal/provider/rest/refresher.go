package rest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/logger"
)

// FileKeyRefresher reloads API keys from mounted secret files when a
// remote rejects the current credential. Rotation happens outside the
// process (a secret re-mount or file replacement); Refresh re-reads
// every registered file and swaps the key on its client.
type FileKeyRefresher struct {
	targets []keyTarget
}

type keyTarget struct {
	client *Client
	path   string
}

func NewFileKeyRefresher() *FileKeyRefresher {
	return &FileKeyRefresher{}
}

// Register adds one client whose key lives at path
func (r *FileKeyRefresher) Register(client *Client, path string) {
	r.targets = append(r.targets, keyTarget{client: client, path: path})
}

// Refresh re-reads every registered key file and installs the keys
func (r *FileKeyRefresher) Refresh(ctx context.Context, tenant string) error {
	for _, target := range r.targets {
		data, err := os.ReadFile(target.path)
		if err != nil {
			return fmt.Errorf("failed to reload api key from %s: %w", target.path, err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return fmt.Errorf("api key file %s is empty", target.path)
		}
		target.client.SetAPIKey(key)
		logger.InfoCtx(ctx, "reloaded api key",
			zap.String("tenant", tenant),
			zap.String("path", target.path))
	}
	return nil
}
