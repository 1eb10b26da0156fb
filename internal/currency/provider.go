package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sumire/charity/internal/domain"
)

// Provider fetches a fresh rate snapshot for base.
type Provider interface {
	Fetch(ctx context.Context, base string) (*Rates, error)
}

// HTTPProvider calls an open.er-api.com compatible endpoint
// (GET {baseURL}/{BASE}). Outgoing calls share one token bucket.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewHTTPProvider allows ratePerSec upstream calls per second with burst.
func NewHTTPProvider(baseURL string, client *http.Client, ratePerSec float64, burst int) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		now:     time.Now,
	}
}

type upstreamResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

func (p *HTTPProvider) Fetch(ctx context.Context, base string) (*Rates, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+base, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates for %s (status %d): %w", base, resp.StatusCode, err)
	}

	if body.Result != "success" {
		if body.ErrorType == "unsupported-code" {
			return nil, domain.NewAppError(domain.CodeNotFound, "currency is not supported",
				domain.WithDetails(map[string]any{"currency": base}))
		}
		return nil, fmt.Errorf("rate provider returned %q (%s) with status %d", body.Result, body.ErrorType, resp.StatusCode)
	}

	return &Rates{
		Base:      strings.ToUpper(body.BaseCode),
		Rates:     body.Rates,
		FetchedAt: p.now().UTC(),
	}, nil
}
