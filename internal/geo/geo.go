package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultBaseURL is the ip-api.com endpoint. The free tier only serves
// plain http.
const defaultBaseURL = "http://ip-api.com"

const lookupFields = "status,message,country,countryCode,regionName,city,zip,lat,lon,timezone,isp,org,as,query"

// Location is the geolocation record for one IP address, as returned
// by ip-api.com.
type Location struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	Query       string  `json:"query"`
}

// ClientConfig holds options for the geolocation client.
type ClientConfig struct {
	BaseURL   string // empty = ip-api.com
	Timeout   time.Duration
	UserAgent string
}

// Client queries the ip-api.com JSON endpoint.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// NewClient builds a geolocation client.
func NewClient(cfg ClientConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   base,
		userAgent: cfg.UserAgent,
	}
}

// Lookup fetches the geolocation record for an IP.
func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	url := c.baseURL + "/json/" + ip + "?fields=" + lookupFields
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request for %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation request for %s: status %d", ip, resp.StatusCode)
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, fmt.Errorf("decoding geolocation for %s: %w", ip, err)
	}
	if loc.Status != "success" {
		return nil, fmt.Errorf("geolocation for %s failed: %s", ip, loc.Message)
	}
	return &loc, nil
}
