package domain

import "errors"

// Ошибки синхронизации. Хендлер мапит их в категории
// not_connected / auth_refresh_failed / sync_failed.
var (
	ErrNotConnected   = errors.New("strava account not connected")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrTelemetryFetch = errors.New("telemetry fetch failed")
)
