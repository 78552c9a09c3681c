package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Location is what the geo-IP collaborator resolves for a client address.
type Location struct {
	IP          string   `json:"ip"`
	Country     string   `json:"country"`
	CountryCode string   `json:"country_code"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"lat"`
	Longitude   *float64 `json:"lon"`
	Timezone    string   `json:"timezone"`
}

// Client looks up request origin via an ipapi.co-compatible service. Lookups
// are bounded by a short timeout and soft-fail to nil; the caller substitutes
// the configured fallback country.
type Client struct {
	baseURL         string
	fallbackCountry string
	client          *http.Client
}

func NewClient(baseURL, fallbackCountry string) *Client {
	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		fallbackCountry: fallbackCountry,
		client:          &http.Client{Timeout: 3 * time.Second},
	}
}

type ipapiResponse struct {
	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Timezone    string   `json:"timezone"`
}

// Lookup resolves the location for ip, or nil when the collaborator is
// unavailable. Private and loopback addresses are blanked so the service
// auto-detects the server's public IP during local development.
func (c *Client) Lookup(ctx context.Context, ip string) *Location {
	if isPrivate(ip) {
		ip = ""
	}

	loc, err := c.lookup(ctx, ip)
	if err != nil {
		slog.Warn("Geo lookup failed", "ip", ip, "error", err)
		return nil
	}

	return loc
}

// CountryOrFallback returns the lowercase country code for ip, falling back
// to the configured default when the lookup fails.
func (c *Client) CountryOrFallback(ctx context.Context, ip string) string {
	if loc := c.Lookup(ctx, ip); loc != nil && loc.CountryCode != "" {
		return strings.ToLower(loc.CountryCode)
	}
	return c.fallbackCountry
}

func (c *Client) lookup(ctx context.Context, ip string) (*Location, error) {
	lookupURL := fmt.Sprintf("%s/%s/json/", c.baseURL, ip)
	if ip == "" {
		lookupURL = c.baseURL + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Location{
		IP:          ip,
		Country:     decoded.CountryName,
		CountryCode: decoded.CountryCode,
		City:        decoded.City,
		Latitude:    decoded.Latitude,
		Longitude:   decoded.Longitude,
		Timezone:    decoded.Timezone,
	}, nil
}

func isPrivate(ip string) bool {
	if ip == "" {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate()
}

// ClientIP picks the original client address from X-Forwarded-For when a
// proxy set it, else the direct remote address.
func ClientIP(remoteAddr, forwardedFor string) string {
	if forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
