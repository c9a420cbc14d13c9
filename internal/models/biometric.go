package models

type BiometryType string

const (
	BiometryTouchID          BiometryType = "touchId"
	BiometryFaceID           BiometryType = "faceId"
	BiometryFingerprint      BiometryType = "fingerprintAuthentication"
	BiometryFace             BiometryType = "faceAuthentication"
	BiometryIris             BiometryType = "irisAuthentication"
	BiometryDeviceCredential BiometryType = "deviceCredential"
)

// BiometryInfo is what the platform reports about biometric hardware.
type BiometryInfo struct {
	IsAvailable bool
	Types       []BiometryType
}

type PromptOptions struct {
	Reason                string
	Title                 string
	Subtitle              string
	CancelTitle           string
	AllowDeviceCredential bool
}

// BiometricEnrollment is the opt-in state persisted in the secure store.
type BiometricEnrollment struct {
	Enabled bool   `json:"enabled"`
	Email   string `json:"email,omitempty"`
}

type BiometricResult struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}
