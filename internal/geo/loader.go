package geo

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LayerCache stores raw GeoJSON bodies fetched from remote sources
type LayerCache interface {
	CachedLayer(source string) (body []byte, fetchedAt time.Time, ok bool, err error)
	StoreLayer(source string, body []byte, fetchedAt time.Time) error
}

// Loader reads GeoJSON layers from local files or http(s) URLs
type Loader struct {
	httpClient *http.Client
	cache      LayerCache
	ttl        time.Duration
	group      singleflight.Group
	now        func() time.Time
}

// NewLoader creates a layer loader. cache may be nil; remote bodies are then
// fetched on every load.
func NewLoader(cache LayerCache, ttl time.Duration) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Load returns a freshly decoded FeatureCollection for source. Callers own the
// result and may mutate it.
func (l *Loader) Load(ctx context.Context, source string) (*FeatureCollection, error) {
	body, err := l.Raw(ctx, source)
	if err != nil {
		return nil, err
	}
	return DecodeFeatureCollection(body)
}

// Raw returns the layer body. Concurrent calls for one source share a fetch.
// The shared fetch outlives any single caller's cancellation and is bounded
// by the client timeout; each caller stops waiting when its own ctx is done.
func (l *Loader) Raw(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, eris.New("geo: empty layer source")
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(source, func() (interface{}, error) {
		if !isRemote(source) {
			body, err := os.ReadFile(source)
			if err != nil {
				return nil, eris.Wrapf(err, "geo: read %s", source)
			}
			return body, nil
		}
		return l.remote(fetchCtx, source)
	})

	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "geo: waiting for %s", source)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (l *Loader) remote(ctx context.Context, source string) ([]byte, error) {
	if l.cache != nil {
		body, fetchedAt, ok, err := l.cache.CachedLayer(source)
		if err != nil {
			zap.L().Warn("geo: layer cache read failed", zap.String("source", source), zap.Error(err))
		} else if ok && l.now().Sub(fetchedAt) < l.ttl {
			return body, nil
		}
	}

	body, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	if _, err := DecodeFeatureCollection(body); err != nil {
		return nil, eris.Wrapf(err, "geo: invalid layer at %s", source)
	}

	zap.L().Info("geo: fetched layer", zap.String("source", source), zap.Int("bytes", len(body)))

	if l.cache != nil {
		if err := l.cache.StoreLayer(source, body, l.now()); err != nil {
			zap.L().Warn("geo: layer cache write failed", zap.String("source", source), zap.Error(err))
		}
	}

	return body, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", source, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geo: creating request")
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", "DistrictMap/1.0")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: fetching %s", source)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("geo: %s returned %d: %s", source, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: reading %s", source)
	}

	return body, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
