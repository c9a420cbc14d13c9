package models

// Request and response bodies of the local shell API the UI host talks to.

type ShellSignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type ShellLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ShellVerifyRequest struct {
	Email       string `json:"email"`
	OneTimeCode string `json:"oneTimeCode"`
}

type BiometricEnableRequest struct {
	Email string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RefreshResult struct {
	Refreshed bool `json:"refreshed"`
}

type SessionStatus struct {
	LoggedIn  bool                `json:"loggedIn"`
	Biometric BiometricEnrollment `json:"biometric"`
}

type BiometricStatus struct {
	Available bool           `json:"available"`
	Types     []BiometryType `json:"types"`
	Enabled   bool           `json:"enabled"`
	Email     string         `json:"email,omitempty"`
}

type NavigationState struct {
	Location string `json:"location"`
}

// PageView is served for a protected page once the guard let it through.
type PageView struct {
	Path    string            `json:"path"`
	Profile *CandidateProfile `json:"profile,omitempty"`
}
