package models

type SignupCodeRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

type VerifyCodeRequest struct {
	Email       string `json:"email"`
	OneTimeCode string `json:"oneTimeCode"`
	DeviceMetadata
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceMetadata
}

type BiometricLoginRequest struct {
	Email string `json:"email"`
	DeviceMetadata
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceMetadata
}

type TokenPairResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetVerifyRequest struct {
	Email       string `json:"email"`
	OneTimeCode string `json:"oneTimeCode"`
}

type PasswordResetCompleteRequest struct {
	Email       string `json:"email"`
	OneTimeCode string `json:"oneTimeCode"`
	NewPassword string `json:"newPassword"`
}
