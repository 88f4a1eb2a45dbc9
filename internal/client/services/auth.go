// Package services contains the application services of the TaskFlow client:
// the authentication session flow and the knowledge-base view controller.
// Both are thin orchestration over the typed API clients; remote services
// stay the source of truth.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prolianceltd/taskflow-cli/internal/client/api"
	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/client/session"
	"github.com/prolianceltd/taskflow-cli/internal/common"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

// State is the position of the session flow.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateOTPPending     State = "otp_pending"
	StateAuthenticated  State = "authenticated"
)

// IdentityAPI is the slice of the identity service the session flow needs.
// api.AuthClient satisfies it; tests can provide a fake.
type IdentityAPI interface {
	Login(ctx context.Context, p api.LoginParams) (*models.LoginResult, error)
	VerifyOTP(ctx context.Context, identifier, code string) (*models.LoginResult, error)
	ValidateToken(ctx context.Context) error
	Users(ctx context.Context) ([]models.Identity, error)
}

// Challenge is the transient value that exists between a login call that
// requested an OTP and its resolution. It retains the original credentials so
// a resend replays the identical request, plus the metadata the server
// confirmed. Never persisted.
type Challenge struct {
	Params        api.LoginParams // original credentials, replayed on resend
	PendingUserID int64
	Contact       string // server-confirmed contact
	Method        string // delivery channel confirmed by the server
}

// AuthService drives the login state machine:
//
//	Anonymous → Authenticating → (OTPPending ↔ Authenticating) → Authenticated
//
// Logout and a server-signaled 401 both re-enter Anonymous. The Token Store
// is the only holder of the resulting session.
type AuthService struct {
	api   IdentityAPI
	store *session.Store
	log   logging.Logger

	state     State
	challenge *Challenge
}

func NewAuthService(apiClient IdentityAPI, store *session.Store, log logging.Logger) *AuthService {
	return &AuthService{api: apiClient, store: store, log: log, state: StateAnonymous}
}

// State returns the current flow state.
func (a *AuthService) State() State { return a.state }

// Identity returns the decoded session identity, if authenticated.
func (a *AuthService) Identity() (models.Identity, bool) { return a.store.Identity() }

// Challenge returns a copy of the pending OTP challenge, if any.
func (a *AuthService) Challenge() (Challenge, bool) {
	if a.challenge == nil {
		return Challenge{}, false
	}
	return *a.challenge, true
}

// Restore rebuilds the session from the persisted token on process start.
// A malformed token is an invalid-session condition and silently downgrades
// to Anonymous.
func (a *AuthService) Restore() {
	if err := a.store.Restore(); err != nil {
		a.log.Warn(context.Background(), "discarding persisted session", "error", err)
	}
	if a.store.Authenticated() {
		a.state = StateAuthenticated
	} else {
		a.state = StateAnonymous
	}
}

// Login starts the session flow. Three outcomes: immediate success
// (Authenticated, session stored), an OTP challenge (OTPPending, credentials
// retained for resend), or failure (back to the prior state, error surfaced).
func (a *AuthService) Login(ctx context.Context, p api.LoginParams) (State, error) {
	prev := a.state
	a.state = StateAuthenticating

	result, err := a.api.Login(ctx, p)
	if err != nil {
		a.state = prev
		return a.state, err
	}

	if result.RequiresOTP {
		a.challenge = &Challenge{
			Params:        p,
			PendingUserID: result.UserID,
			Contact:       result.Email,
			Method:        challengeMethod(result.OTPMethod),
		}
		a.state = StateOTPPending
		return a.state, nil
	}

	if err := a.completeLogin(result); err != nil {
		a.state = prev
		return a.state, err
	}
	return a.state, nil
}

// VerifyOTP resolves a pending challenge with the 6-digit code. The original
// identifier is resubmitted, not the server-confirmed contact. On failure the
// challenge is retained so the user can retry with a fresh code.
func (a *AuthService) VerifyOTP(ctx context.Context, code string) (State, error) {
	if a.state != StateOTPPending || a.challenge == nil {
		return a.state, common.ErrNoPendingChallenge
	}

	a.state = StateAuthenticating
	result, err := a.api.VerifyOTP(ctx, a.challenge.Params.Identifier, code)
	if err != nil {
		a.state = StateOTPPending
		return a.state, err
	}

	if err := a.completeLogin(result); err != nil {
		a.state = StateOTPPending
		return a.state, err
	}
	a.challenge = nil
	return a.state, nil
}

// ResendOTP replays the original login with identical parameters. On success
// the pending-challenge metadata is refreshed; the state does not change.
func (a *AuthService) ResendOTP(ctx context.Context) error {
	if a.state != StateOTPPending || a.challenge == nil {
		return common.ErrNoPendingChallenge
	}

	result, err := a.api.Login(ctx, a.challenge.Params)
	if err != nil {
		return err
	}

	if result.RequiresOTP {
		a.challenge.PendingUserID = result.UserID
		a.challenge.Contact = result.Email
		a.challenge.Method = challengeMethod(result.OTPMethod)
		return nil
	}

	// The server skipped the challenge on replay. Should not happen, but
	// accept the grant rather than stranding the user.
	if err := a.completeLogin(result); err != nil {
		return err
	}
	a.challenge = nil
	return nil
}

// CancelOTP abandons the pending challenge and returns to Anonymous.
func (a *AuthService) CancelOTP() {
	a.challenge = nil
	a.state = StateAnonymous
}

// Logout clears the session and all durable storage.
func (a *AuthService) Logout() {
	a.store.Clear()
	a.challenge = nil
	a.state = StateAnonymous
}

// ForceAnonymous is the gateway's unauthorized hook target: the token is
// already cleared by the interceptor, only the flow state needs to follow.
func (a *AuthService) ForceAnonymous() {
	a.challenge = nil
	a.state = StateAnonymous
}

// Validate asks the identity service whether the current token still stands.
func (a *AuthService) Validate(ctx context.Context) error {
	return a.api.ValidateToken(ctx)
}

// Users lists the accounts visible to the caller.
func (a *AuthService) Users(ctx context.Context) ([]models.Identity, error) {
	return a.api.Users(ctx)
}

func (a *AuthService) completeLogin(result *models.LoginResult) error {
	if result.Access == "" || result.User == nil {
		return errors.New("invalid response format from auth service")
	}
	if err := a.store.Set(result.Access, result.Refresh, *result.User); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	a.state = StateAuthenticated
	return nil
}

func challengeMethod(method string) string {
	if method == "" {
		return "email"
	}
	return method
}

// IsEmailIdentifier mirrors the wire-level classification: identifiers
// containing '@' log in by email, all others by username.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}
