// Package threatintel is the HTTP client for the VPN/proxy/Tor detection
// collaborator.
package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"warden/internal/geo"
	"warden/pkg/platform/provider"
)

const providerName = "threat_intel"

type detectResponse struct {
	IsVPN       bool   `json:"is_vpn"`
	IsProxy     bool   `json:"is_proxy"`
	IsTor       bool   `json:"is_tor"`
	ThreatLevel string `json:"threat_level"`
}

// Client calls GET {baseURL}/v1/ip/{ip} with an API key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Detect(ctx context.Context, ip string) (geo.Signals, error) {
	endpoint := fmt.Sprintf("%s/v1/ip/%s", c.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return geo.Signals{}, provider.NewError(provider.CategoryInternal, providerName, "build request", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Signals{}, provider.Classify(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return geo.Signals{}, statusError(resp.StatusCode, string(body))
	}

	var out detectResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return geo.Signals{}, provider.NewError(provider.CategoryBadData, providerName, "decode response", err)
	}
	return geo.Signals{
		IsVPN:       out.IsVPN,
		IsProxy:     out.IsProxy,
		IsTor:       out.IsTor,
		ThreatLevel: geo.ParseThreatLevel(out.ThreatLevel),
	}, nil
}

func statusError(status int, body string) error {
	msg := fmt.Sprintf("status %d: %s", status, body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return provider.NewError(provider.CategoryAuthentication, providerName, msg, nil)
	case status == http.StatusNotFound:
		return provider.NewError(provider.CategoryNotFound, providerName, msg, nil)
	case status == http.StatusTooManyRequests:
		return provider.NewError(provider.CategoryRateLimited, providerName, msg, nil)
	case status >= 500:
		return provider.NewError(provider.CategoryOutage, providerName, msg, nil)
	default:
		return provider.NewError(provider.CategoryBadData, providerName, msg, nil)
	}
}

// Disabled stands in when no detector is configured. Every address reports
// no anonymizer and low threat.
type Disabled struct{}

func (Disabled) Detect(ctx context.Context, _ string) (geo.Signals, error) {
	if err := ctx.Err(); err != nil {
		return geo.Signals{}, err
	}
	return geo.Signals{ThreatLevel: geo.ThreatLow}, nil
}
