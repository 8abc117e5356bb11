package userservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client — минимальный клиент user-сервиса для обновления профиля
// после привязки Strava.
type Client struct {
	address    string
	httpClient *http.Client
}

func NewClient(address string) *Client {
	return &Client{
		address:    address,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, avatar string) error {
	body, err := json.Marshal(updateProfileRequest{
		DisplayName: displayName,
		Avatar:      avatar,
	})
	if err != nil {
		return fmt.Errorf("marshal profile update: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/profile", c.address, userID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("user service returned status %d", resp.StatusCode)
	}
	return nil
}
