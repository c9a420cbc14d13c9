package models

import "time"

// Credentials is the token pair persisted in the secure store.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

type AppState string

const (
	AppStateForeground AppState = "foreground"
	AppStateBackground AppState = "background"
)

func (s AppState) IsActive() bool { return s == AppStateForeground }

type SessionEventType string

const (
	SessionEventForcedLogout SessionEventType = "forced_logout"
	SessionEventRevoked      SessionEventType = "session_revoked"
)

type SessionEvent struct {
	Type     SessionEventType `json:"type"`
	DeviceID string           `json:"device_id,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	At       time.Time        `json:"at"`
}

type BiometricLoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}
