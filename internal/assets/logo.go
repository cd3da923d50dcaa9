package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Logo supplies the institution logo. The first successful load is kept
// for the life of the process; failures are retried on the next call.
type Logo struct {
	path   string
	url    string
	client *Client
	log    *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	data  []byte
}

// NewLogo reads the logo from path, or downloads it from url when path is
// empty. Both empty means no logo.
func NewLogo(path, url string, client *Client, log *zap.Logger) *Logo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logo{path: path, url: url, client: client, log: log}
}

// Bytes returns the logo, or nil when it cannot be loaded.
func (l *Logo) Bytes(ctx context.Context) []byte {
	l.mu.RLock()
	data := l.data
	l.mu.RUnlock()
	if data != nil {
		return data
	}

	v, err, _ := l.group.Do("logo", func() (any, error) {
		l.mu.RLock()
		cached := l.data
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		data, err := l.load(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.data = data
		l.mu.Unlock()
		return data, nil
	})
	if err != nil {
		if !errors.Is(err, errNoSource) {
			l.log.Warn("logo unavailable", zap.String("path", l.path), zap.String("url", l.url), zap.Error(err))
		}
		return nil
	}
	return v.([]byte)
}

// Health reports whether the logo source can be reached.
func (l *Logo) Health(ctx context.Context) error {
	switch {
	case l.path != "":
		_, err := os.Stat(l.path)
		return err
	case l.url != "" && l.client != nil:
		return l.client.Health(ctx, l.url)
	}
	return nil
}

var errNoSource = errors.New("assets: no logo configured")

func (l *Logo) load(ctx context.Context) ([]byte, error) {
	switch {
	case l.path != "":
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("assets: read logo: %w", err)
		}
		return data, nil
	case l.url != "" && l.client != nil:
		return l.client.Fetch(ctx, l.url)
	}
	return nil, errNoSource
}
