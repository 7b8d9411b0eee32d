// Package fetcher retrieves tile bytes from a provider's remote origin by
// substituting placeholders into its URL template. It never returns an
// error to the caller: any failure (network, timeout, non-2xx, empty
// body) is reported as a plain absence, matching the "remote fetch never
// throws" contract the cache layer depends on.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/signalk/chart-tiles/internal/tilemath"
)

// Fetcher issues rate-limited HTTP GETs against provider URL templates.
type Fetcher struct {
	client  *http.Client
	log     zerolog.Logger
	timeout time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rateN    float64
	burst    int
}

// New builds a Fetcher. ratePerSecond and burst configure a per-provider
// token bucket (golang.org/x/time/rate) so one misbehaving remote origin
// can't be hammered by a large seed job.
func New(timeout time.Duration, ratePerSecond float64, burst int, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{},
		log:      log.With().Str("component", "fetcher").Logger(),
		timeout:  timeout,
		limiters: make(map[string]*rate.Limiter),
		rateN:    ratePerSecond,
		burst:    burst,
	}
}

func (f *Fetcher) limiterFor(providerID string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[providerID]
	if !ok {
		limit := rate.Limit(f.rateN)
		if f.rateN <= 0 {
			limit = rate.Inf
		}
		l = rate.NewLimiter(limit, f.burst)
		f.limiters[providerID] = l
	}
	return l
}

// Fetch substitutes z/x/y into urlTemplate and issues a GET carrying
// headers. It returns (data, true, nil) on a 2xx response with a
// non-empty body, or (nil, false, nil) on any other outcome. err is only
// non-nil if ctx is canceled by the caller before the request could even
// be attempted (rate limiter wait).
func (f *Fetcher) Fetch(ctx context.Context, providerID, urlTemplate string, headers map[string]string, z, x, y int) ([]byte, bool, error) {
	if err := f.limiterFor(providerID).Wait(ctx); err != nil {
		return nil, false, err
	}

	reqURL := substitute(urlTemplate, z, x, y)
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		f.log.Warn().Err(err).Str("url", reqURL).Msg("fetcher: building request failed")
		return nil, false, nil
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug().Err(err).Str("url", reqURL).Msg("fetcher: remote request failed")
		return nil, false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Debug().Int("status", resp.StatusCode).Str("url", reqURL).Msg("fetcher: remote returned non-2xx")
		return nil, false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		f.log.Debug().Err(err).Str("url", reqURL).Msg("fetcher: remote body read failed or empty")
		return nil, false, nil
	}
	return data, true, nil
}

func substitute(tmpl string, z, x, y int) string {
	negY := tilemath.FlipY(y, z)
	r := strings.NewReplacer(
		"{z-2}", strconv.Itoa(z-2),
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{-y}", strconv.Itoa(negY),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(tmpl)
}
