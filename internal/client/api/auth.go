package api

import (
	"context"
	"strings"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
)

// AuthClient is the typed call surface of the remote identity service.
type AuthClient struct {
	ch *Channel
}

func NewAuthClient(ch *Channel) *AuthClient {
	return &AuthClient{ch: ch}
}

// LoginParams carries everything the login endpoint needs. The identifier is
// classified as an email when it contains '@', else as a username; the
// discriminator selects which field name goes on the wire, never both.
type LoginParams struct {
	Identifier string
	Password   string
	RememberMe bool
	OTPMethod  string // "email" or "phone"; only sent for email identifiers
}

func isEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}

func identifierField(body map[string]any, identifier string) {
	if isEmail(identifier) {
		body["email"] = identifier
	} else {
		body["username"] = identifier
	}
}

// Login performs POST /token/. The response is either a token grant or an
// OTP challenge; callers branch on LoginResult.RequiresOTP.
func (c *AuthClient) Login(ctx context.Context, p LoginParams) (*models.LoginResult, error) {
	body := map[string]any{
		"password":    p.Password,
		"remember_me": p.RememberMe,
	}
	identifierField(body, p.Identifier)
	if p.OTPMethod != "" && isEmail(p.Identifier) {
		body["otp_method"] = p.OTPMethod
	}

	var result models.LoginResult
	if err := c.ch.Post(ctx, "/token/", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyOTP performs POST /verify-otp/ with the original identifier and the
// 6-digit code. A success response has the same shape as a direct login.
func (c *AuthClient) VerifyOTP(ctx context.Context, identifier, code string) (*models.LoginResult, error) {
	body := map[string]any{"otp_code": code}
	identifierField(body, identifier)

	var result models.LoginResult
	if err := c.ch.Post(ctx, "/verify-otp/", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateToken performs the bearer-authenticated GET /token/validate/.
func (c *AuthClient) ValidateToken(ctx context.Context) error {
	return c.ch.Get(ctx, "/token/validate/", nil, nil)
}

// Users lists the accounts visible to the caller (GET /user/users/).
func (c *AuthClient) Users(ctx context.Context) ([]models.Identity, error) {
	var users []models.Identity
	if err := c.ch.Get(ctx, "/user/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
