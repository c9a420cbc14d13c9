package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/util"
)

const (
	defaultHTTPStatusThreshold = 300
	maxResponseBytes           = 1 << 20

	pathSignupCode    = "/api/auth/otc/candidate"
	pathVerify        = "/api/auth/verify/candidate"
	pathLogin         = "/api/auth/login"
	pathBiometric     = "/api/auth/biometric-login"
	pathRefresh       = "/api/auth/refresh"
	pathResetRequest  = "/api/auth/otc/candidate/password"
	pathResetVerify   = "/api/auth/password/verify"
	pathResetComplete = "/api/auth/password/reset"
	pathProfile       = "/api/candidateprofile/me"

	msgSignupFailed    = "Could not send the verification code"
	msgVerifyFailed    = "Verification failed. Please check the code and try again."
	msgLoginFailed     = "Login failed. Please check your credentials."
	msgBiometricFailed = "Biometric login failed"
	msgRefreshFailed   = "Session refresh failed"
	msgResetFailed     = "Password reset failed"
	msgProfileFailed   = "Could not load profile"
)

var (
	ErrUnreachable        = errors.New("api unreachable")
	ErrEmptyTokenResponse = errors.New("token response without token")
)

// Client talks to the recruitment API. Non-2xx responses come back as
// util.ResponseError with the message already extracted.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

func NewClient(baseURL string, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

func (c *Client) SendSignupCode(ctx context.Context, req models.SignupCodeRequest) error {
	return c.do(ctx, http.MethodPost, pathSignupCode, req, nil, msgSignupFailed)
}

func (c *Client) VerifyCandidate(ctx context.Context, req models.VerifyCodeRequest) (*models.TokenPairResponse, error) {
	return c.tokenPair(ctx, pathVerify, req, msgVerifyFailed)
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPairResponse, error) {
	return c.tokenPair(ctx, pathLogin, req, msgLoginFailed)
}

func (c *Client) BiometricLogin(ctx context.Context, req models.BiometricLoginRequest) (*models.TokenPairResponse, error) {
	return c.tokenPair(ctx, pathBiometric, req, msgBiometricFailed)
}

func (c *Client) Refresh(ctx context.Context, req models.RefreshRequest) (*models.TokenPairResponse, error) {
	return c.tokenPair(ctx, pathRefresh, req, msgRefreshFailed)
}

func (c *Client) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) error {
	return c.do(ctx, http.MethodPost, pathResetRequest, req, nil, msgResetFailed)
}

func (c *Client) VerifyResetCode(ctx context.Context, req models.PasswordResetVerifyRequest) error {
	return c.do(ctx, http.MethodPost, pathResetVerify, req, nil, msgResetFailed)
}

func (c *Client) ResetPassword(ctx context.Context, req models.PasswordResetCompleteRequest) error {
	return c.do(ctx, http.MethodPost, pathResetComplete, req, nil, msgResetFailed)
}

// GetProfile returns nil, nil when the candidate has not set up a profile yet
// and the server answers with an empty body.
func (c *Client) GetProfile(ctx context.Context) (*models.CandidateProfile, error) {
	var profile *models.CandidateProfile
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, &profile, msgProfileFailed); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) tokenPair(ctx context.Context, path string, req interface{}, fallback string) (*models.TokenPairResponse, error) {
	var resp models.TokenPairResponse
	if err := c.do(ctx, http.MethodPost, path, req, &resp, fallback); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrEmptyTokenResponse
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody interface{}, fallback string) error {
	var body io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= defaultHTTPStatusThreshold {
		c.log.Debugw("api returned non-2xx status", "method", method, "path", path, "status", resp.StatusCode)
		return util.ResponseError{
			Msg:    ExtractMessage(raw, fallback),
			Status: resp.StatusCode,
			Code:   extractCode(raw),
		}
	}

	if respBody != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
