package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/config"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

func newTestClient(tokenURL, apiURL string) *Client {
	return NewClient(&config.Strava{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
		APIURL:       apiURL,
	}, nopLogger{})
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("expected authorization_code grant, got %q", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("expected code forwarded, got %q", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "client-secret" {
			t.Errorf("client secret missing, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "acc",
			"refresh_token": "ref",
			"expires_at": 1700000000,
			"athlete": {
				"id": 42,
				"firstname": "Ivan",
				"lastname": "Petrov",
				"profile": "https://example.com/avatar.jpg",
				"bikes": [
					{"id": "b123", "name": "Roadie", "brand_name": "Canyon", "model_name": "Ultimate", "distance": 1499500, "frame_type": 3, "primary": true}
				]
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	grant, err := client.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if grant.AccessToken != "acc" || grant.RefreshToken != "ref" || grant.ExpiresAt != 1700000000 {
		t.Errorf("unexpected grant: %+v", grant)
	}
	if grant.Athlete == nil {
		t.Fatal("expected athlete in authorization_code grant")
	}
	if grant.Athlete.ID != 42 || grant.Athlete.FirstName != "Ivan" {
		t.Errorf("unexpected athlete: %+v", grant.Athlete)
	}
	if len(grant.Athlete.Bikes) != 1 {
		t.Fatalf("expected 1 bike, got %d", len(grant.Athlete.Bikes))
	}
	bike := grant.Athlete.Bikes[0]
	if bike.ExternalID != "b123" || bike.Brand != "Canyon" || bike.DistanceMeters != 1499500 || bike.FrameTypeCode != 3 || !bike.Primary {
		t.Errorf("unexpected bike mapping: %+v", bike)
	}
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("expected refresh_token grant, got %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "old-refresh" {
			t.Errorf("expected refresh token forwarded, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "new-acc", "refresh_token": "new-ref", "expires_at": 1700003600}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	grant, err := client.RefreshToken(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.AccessToken != "new-acc" || grant.RefreshToken != "new-ref" {
		t.Errorf("unexpected grant: %+v", grant)
	}
	if grant.Athlete != nil {
		t.Error("refresh grant must not carry athlete")
	}
}

func TestRequestToken_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Bad Request"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	if _, err := client.ExchangeCode(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestGetAthlete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/athlete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("expected bearer token, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"firstname": "Ivan",
			"bikes": [
				{"id": "b1", "name": "MTB", "distance": 250400, "frame_type": 1}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	athlete, err := client.GetAthlete(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if athlete.ID != 42 || len(athlete.Bikes) != 1 {
		t.Errorf("unexpected athlete: %+v", athlete)
	}
	if athlete.Bikes[0].FrameTypeCode != 1 {
		t.Errorf("frame type code lost: %+v", athlete.Bikes[0])
	}
}

func TestGetAthlete_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	_, err := client.GetAthlete(context.Background(), "expired")
	if !errors.Is(err, domain.ErrTelemetryFetch) {
		t.Fatalf("expected ErrTelemetryFetch, got %v", err)
	}
}
