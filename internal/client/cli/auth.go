package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/prolianceltd/taskflow-cli/internal/client/api"
	"github.com/prolianceltd/taskflow-cli/internal/client/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for an email or username plus a password and starts the
// session flow. Identifiers containing '@' are treated as email addresses;
// for those the server may answer with a one-time-code challenge, which is
// resolved interactively via promptOTP.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	remember := GetConfirmation(a.reader, "Stay signed in?", a.out)

	params := api.LoginParams{
		Identifier: identifier,
		Password:   string(password),
		RememberMe: remember,
	}
	if services.IsEmailIdentifier(identifier) {
		method, err := getSimpleText(a.reader, "Send one-time code via email or phone? [email]", a.out)
		if err != nil {
			return err
		}
		if method != "phone" {
			method = "email"
		}
		params.OTPMethod = method
	}

	state, err := a.auth.Login(ctx, params)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %s\n", serverOr(err))
		return err
	}

	if state == services.StateOTPPending {
		return a.promptOTP(ctx)
	}

	a.greet()
	return nil
}

// promptOTP runs the challenge subflow: read a 6-digit code and verify it,
// or accept "resend" to replay the original login and "cancel" to abandon
// the challenge. A rejected code keeps the challenge alive for another try.
func (a *App) promptOTP(ctx context.Context) error {
	if challenge, ok := a.auth.Challenge(); ok {
		fmt.Fprintf(a.out, "A one-time code was sent via %s to %s\n", challenge.Method, challenge.Contact)
	}

	for {
		code, err := getSimpleText(a.reader, "Enter the 6-digit code (or 'resend' / 'cancel')", a.out)
		if err != nil {
			return err
		}

		switch code {
		case "cancel":
			a.auth.CancelOTP()
			fmt.Fprintln(a.out, "Login cancelled")
			return nil
		case "resend":
			if err := a.auth.ResendOTP(ctx); err != nil {
				fmt.Fprintf(a.out, "Resend failed: %s\n", serverOr(err))
				continue
			}
			if a.isLoggedIn() {
				a.greet()
				return nil
			}
			fmt.Fprintln(a.out, "Code resent")
			continue
		}

		if !isOTPCode(code) {
			fmt.Fprintln(a.out, "The code must be exactly 6 digits")
			continue
		}

		state, err := a.auth.VerifyOTP(ctx, code)
		if err != nil {
			fmt.Fprintf(a.out, "Verification failed: %s\n", serverOr(err))
			continue
		}
		if state == services.StateAuthenticated {
			a.greet()
			return nil
		}
	}
}

// Logout clears the session and the persisted token.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Status reports the session flow state and, when authenticated, checks the
// token against the identity service.
func (a *App) Status(ctx context.Context) error {
	state := a.auth.State()
	fmt.Fprintf(a.out, "Session: %s\n", state)

	if identity, ok := a.auth.Identity(); ok {
		fmt.Fprintf(a.out, "Signed in as %s <%s> (%s)\n", identity.DisplayName(), identity.Email, identity.Role)
		if err := a.auth.Validate(ctx); err != nil {
			fmt.Fprintf(a.out, "Token check failed: %s\n", serverOr(err))
		} else {
			fmt.Fprintln(a.out, "Token is valid")
		}
	}
	return nil
}

// Users lists the accounts visible to the current session.
func (a *App) Users(ctx context.Context) error {
	users, err := a.auth.Users(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%4d  %-30s %-30s %s\n", u.ID, u.DisplayName(), u.Email, u.Role)
	}
	return nil
}

func (a *App) greet() {
	if identity, ok := a.auth.Identity(); ok {
		fmt.Fprintf(a.out, "Welcome, %s!\n", identity.DisplayName())
	}
}

func isOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	return strings.IndexFunc(code, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
