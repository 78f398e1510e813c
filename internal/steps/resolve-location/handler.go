// internal/steps/resolve-location/handler.go
package resolvelocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/models"
)

const (
	StepName = "resolve-location"
)

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"step": StepName,
		}),
	}
}

// Execute resolves a coarse location for clinic discovery. A client-provided
// location wins; otherwise the IP lookup service is tried, and any failure
// falls back to the configured default. This step never returns an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Provided != nil && (input.Provided.Latitude != 0 || input.Provided.Longitude != 0 || input.Provided.City != "") {
		return &Output{Location: *input.Provided, UsedDefault: false}, nil
	}

	if h.config.LookupBaseURL != "" && usableIP(input.ClientIP) {
		loc, err := h.lookupIP(ctx, input.ClientIP)
		if err == nil {
			return &Output{Location: *loc, UsedDefault: false}, nil
		}
		h.logger.Warn("ip geolocation failed, using default location", map[string]interface{}{
			"clientIp": input.ClientIP,
			"error":    err.Error(),
		})
	}

	return &Output{Location: h.config.Default, UsedDefault: true}, nil
}

func (h *Handler) lookupIP(ctx context.Context, ip string) (*models.Location, error) {
	url := fmt.Sprintf("%s/json/%s", h.config.LookupBaseURL, ip)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	if h.config.LookupAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.LookupAPIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location API returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Latitude    float64 `json:"lat"`
		Longitude   float64 `json:"lon"`
		City        string  `json:"city"`
		Region      string  `json:"region"`
		CountryCode string  `json:"countryCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, err
	}

	if apiResponse.Latitude == 0 && apiResponse.Longitude == 0 {
		return nil, fmt.Errorf("location API returned empty coordinates")
	}

	return &models.Location{
		Latitude:  apiResponse.Latitude,
		Longitude: apiResponse.Longitude,
		City:      apiResponse.City,
		Region:    apiResponse.Region,
		Country:   apiResponse.CountryCode,
	}, nil
}

// usableIP filters out addresses the lookup service cannot resolve.
func usableIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified()
}

// ClientIP extracts the originating address from request headers, preferring
// the first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
