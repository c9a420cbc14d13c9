package models

//nolint:gosec // key names, not credentials
const (
	AccessTokenKey        = "access_token"
	RefreshTokenKey       = "refresh_token"
	BiometricEnabledKey   = "biometric_enabled"
	BiometricUserEmailKey = "biometric_user_email"

	DeviceIDPreferenceKey = "device_id"

	ReauthRequiredCode = "REAUTH_REQUIRED"

	RootRoute         = "/"
	LoginRoute        = "/login"
	ProfileSetupRoute = "/profile-setup"
	RedirectToParam   = "redirectTo"
)
