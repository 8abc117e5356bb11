package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/config"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"
)

type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client
	logger       ports.LoggerPort
}

func NewClient(cfg *config.Strava, logger ports.LoggerPort) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     cfg.TokenURL,
		apiURL:       cfg.APIURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

type tokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    int64          `json:"expires_at"`
	Athlete      *athletePayload `json:"athlete,omitempty"`
}

type athletePayload struct {
	ID        int64         `json:"id"`
	FirstName string        `json:"firstname"`
	LastName  string        `json:"lastname"`
	Profile   string        `json:"profile"`
	Bikes     []gearPayload `json:"bikes"`
}

type gearPayload struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BrandName string  `json:"brand_name"`
	ModelName string  `json:"model_name"`
	Distance  float64 `json:"distance"` // метры
	FrameType int     `json:"frame_type"`
	Primary   bool    `json:"primary"`
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")

	return c.requestToken(ctx, form)
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	return c.requestToken(ctx, form)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*domain.TokenGrant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Strava token endpoint returned non-OK status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	grant := &domain.TokenGrant{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    payload.ExpiresAt,
	}
	if payload.Athlete != nil {
		grant.Athlete = payload.Athlete.toDomain()
	}
	return grant, nil
}

func (c *Client) GetAthlete(ctx context.Context, accessToken string) (*domain.RemoteAthlete, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/athlete", nil)
	if err != nil {
		return nil, fmt.Errorf("build athlete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTelemetryFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Strava athlete endpoint returned non-OK status", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", domain.ErrTelemetryFetch, resp.StatusCode)
	}

	var payload athletePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrTelemetryFetch, err)
	}

	return payload.toDomain(), nil
}

func (a *athletePayload) toDomain() *domain.RemoteAthlete {
	athlete := &domain.RemoteAthlete{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Avatar:    a.Profile,
		Bikes:     make([]domain.RemoteEquipment, len(a.Bikes)),
	}
	for i, gear := range a.Bikes {
		athlete.Bikes[i] = domain.RemoteEquipment{
			ExternalID:     gear.ID,
			Name:           gear.Name,
			Brand:          gear.BrandName,
			Model:          gear.ModelName,
			DistanceMeters: gear.Distance,
			FrameTypeCode:  gear.FrameType,
			Primary:        gear.Primary,
		}
	}
	return athlete
}
