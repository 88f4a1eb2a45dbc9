package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolianceltd/taskflow-cli/internal/client/api"
	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/client/services"
	"github.com/prolianceltd/taskflow-cli/internal/client/session"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

type fakeIdentityAPI struct {
	loginRet  *models.LoginResult
	loginErr  error
	verifyRet *models.LoginResult
	verifyErr error

	validateErr error
	usersRet    []models.Identity
	usersErr    error

	loginCalls     int
	lastLogin      api.LoginParams
	lastVerifyID   string
	lastVerifyCode string
}

func (f *fakeIdentityAPI) Login(_ context.Context, p api.LoginParams) (*models.LoginResult, error) {
	f.loginCalls++
	f.lastLogin = p
	return f.loginRet, f.loginErr
}

func (f *fakeIdentityAPI) VerifyOTP(_ context.Context, identifier, code string) (*models.LoginResult, error) {
	f.lastVerifyID = identifier
	f.lastVerifyCode = code
	return f.verifyRet, f.verifyErr
}

func (f *fakeIdentityAPI) ValidateToken(context.Context) error { return f.validateErr }
func (f *fakeIdentityAPI) Users(context.Context) ([]models.Identity, error) {
	return f.usersRet, f.usersErr
}

func grantFor(identity models.Identity) *models.LoginResult {
	return &models.LoginResult{Access: "access-token", Refresh: "refresh-token", User: &identity}
}

// newAuthApp builds an App around a real AuthService with a fake wire client
// and a temp-dir session store. Interactive input comes from the given lines.
func newAuthApp(t *testing.T, idAPI *fakeIdentityAPI, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	store := session.NewStore(t.TempDir())
	app := &App{
		auth:   services.NewAuthService(idAPI, store, logging.NopLogger{}),
		reader: bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n")),
		out:    &out,
	}
	return app, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func TestLogin_DirectSuccess(t *testing.T) {
	idAPI := &fakeIdentityAPI{loginRet: grantFor(models.Identity{
		ID: 7, FirstName: "Jane", LastName: "Doe", Email: "jane@example.org",
	})}
	app, out := newAuthApp(t, idAPI, "jane@example.org", "y", "")
	stubPassword(t, "secret")

	require.NoError(t, app.Login(context.Background()))

	require.True(t, app.isLoggedIn())
	require.Equal(t, "jane@example.org", idAPI.lastLogin.Identifier)
	require.Equal(t, "secret", idAPI.lastLogin.Password)
	require.True(t, idAPI.lastLogin.RememberMe)
	require.Equal(t, "email", idAPI.lastLogin.OTPMethod)
	require.Contains(t, out.String(), "Welcome, Jane Doe!")
}

func TestLogin_UsernameSendsNoOTPMethod(t *testing.T) {
	idAPI := &fakeIdentityAPI{loginRet: grantFor(models.Identity{ID: 3, Username: "jdoe"})}
	app, _ := newAuthApp(t, idAPI, "jdoe", "n")
	stubPassword(t, "secret")

	require.NoError(t, app.Login(context.Background()))

	require.Empty(t, idAPI.lastLogin.OTPMethod)
	require.False(t, idAPI.lastLogin.RememberMe)
}

func TestLogin_FailureStaysAnonymous(t *testing.T) {
	idAPI := &fakeIdentityAPI{loginErr: &api.Error{Status: 401, Message: "Invalid credentials"}}
	app, out := newAuthApp(t, idAPI, "jane@example.org", "n", "")
	stubPassword(t, "wrong")

	require.Error(t, app.Login(context.Background()))

	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Invalid credentials")
}

func TestLogin_OTPFlow(t *testing.T) {
	idAPI := &fakeIdentityAPI{
		loginRet: &models.LoginResult{
			RequiresOTP: true, UserID: 7, Email: "jane@example.org", OTPMethod: "email",
		},
		verifyRet: grantFor(models.Identity{ID: 7, FirstName: "Jane", LastName: "Doe"}),
	}
	app, out := newAuthApp(t, idAPI,
		"jane@example.org", // identifier
		"n",                // stay signed in
		"phone",            // code delivery channel
		"12345",            // too short, rejected locally
		"123456",           // verified
	)
	stubPassword(t, "secret")

	require.NoError(t, app.Login(context.Background()))

	require.True(t, app.isLoggedIn())
	require.Equal(t, "phone", idAPI.lastLogin.OTPMethod)
	require.Equal(t, "jane@example.org", idAPI.lastVerifyID)
	require.Equal(t, "123456", idAPI.lastVerifyCode)
	require.Contains(t, out.String(), "sent via email to jane@example.org")
	require.Contains(t, out.String(), "The code must be exactly 6 digits")
	require.Contains(t, out.String(), "Welcome, Jane Doe!")
}

func TestLogin_OTPResendReplaysCredentials(t *testing.T) {
	idAPI := &fakeIdentityAPI{
		loginRet: &models.LoginResult{RequiresOTP: true, UserID: 7, Email: "jane@example.org"},
		verifyRet: grantFor(models.Identity{ID: 7, Username: "jane"}),
	}
	app, out := newAuthApp(t, idAPI,
		"jane@example.org",
		"n",
		"",
		"resend",
		"654321",
	)
	stubPassword(t, "secret")

	require.NoError(t, app.Login(context.Background()))

	require.Equal(t, 2, idAPI.loginCalls)
	require.Equal(t, "jane@example.org", idAPI.lastLogin.Identifier)
	require.Equal(t, "secret", idAPI.lastLogin.Password)
	require.Contains(t, out.String(), "Code resent")
}

func TestLogin_OTPCancel(t *testing.T) {
	idAPI := &fakeIdentityAPI{
		loginRet: &models.LoginResult{RequiresOTP: true, UserID: 7, Email: "jane@example.org"},
	}
	app, out := newAuthApp(t, idAPI, "jane@example.org", "n", "", "cancel")
	stubPassword(t, "secret")

	require.NoError(t, app.Login(context.Background()))

	require.False(t, app.isLoggedIn())
	require.Equal(t, services.StateAnonymous, app.auth.State())
	require.Contains(t, out.String(), "Login cancelled")
}

func TestLogin_OTPWrongCodeKeepsChallenge(t *testing.T) {
	idAPI := &fakeIdentityAPI{
		loginRet:  &models.LoginResult{RequiresOTP: true, UserID: 7, Email: "jane@example.org"},
		verifyErr: &api.Error{Status: 400, Message: "Invalid OTP"},
	}
	app, out := newAuthApp(t, idAPI, "jane@example.org", "n", "", "111111", "cancel")
	stubPassword(t, "secret")

	require.NoError(t, app.Login(context.Background()))

	require.Contains(t, out.String(), "Verification failed: Invalid OTP")
	require.False(t, app.isLoggedIn())
}

func TestLogout(t *testing.T) {
	idAPI := &fakeIdentityAPI{loginRet: grantFor(models.Identity{ID: 1, Username: "jdoe"})}
	app, out := newAuthApp(t, idAPI, "jdoe", "n")
	stubPassword(t, "secret")
	require.NoError(t, app.Login(context.Background()))

	require.NoError(t, app.Logout(context.Background()))

	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Logged out")
}

func TestStatus(t *testing.T) {
	idAPI := &fakeIdentityAPI{loginRet: grantFor(models.Identity{
		ID: 1, FirstName: "Jane", LastName: "Doe", Email: "jane@example.org", Role: "admin",
	})}
	app, out := newAuthApp(t, idAPI, "jane@example.org", "n", "")
	stubPassword(t, "secret")
	require.NoError(t, app.Login(context.Background()))

	require.NoError(t, app.Status(context.Background()))

	require.Contains(t, out.String(), "Session: authenticated")
	require.Contains(t, out.String(), "Jane Doe <jane@example.org> (admin)")
	require.Contains(t, out.String(), "Token is valid")
}

func TestUsers(t *testing.T) {
	idAPI := &fakeIdentityAPI{usersRet: []models.Identity{
		{ID: 1, FirstName: "Jane", LastName: "Doe", Email: "jane@example.org", Role: "admin"},
		{ID: 2, Username: "bob", Email: "bob@example.org", Role: "user"},
	}}
	app, out := newAuthApp(t, idAPI)

	require.NoError(t, app.Users(context.Background()))

	require.Contains(t, out.String(), "Jane Doe")
	require.Contains(t, out.String(), "bob@example.org")
}
