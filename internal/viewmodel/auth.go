package viewmodel

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/backend"
)

// emailRegex is the sign-in form's loose shape check; the backend does
// its own stricter validation.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps form field names to inline validation messages. Empty
// means the form is valid.
type FieldErrors map[string]string

// Valid reports whether the form passed validation.
func (e FieldErrors) Valid() bool { return len(e) == 0 }

// AuthFlow is the view-model behind the login and registration screens.
type AuthFlow struct {
	client backend.Client
	logger zerolog.Logger
}

// NewAuthFlow creates the authentication view-model.
func NewAuthFlow(client backend.Client, logger zerolog.Logger) *AuthFlow {
	return &AuthFlow{client: client, logger: logger}
}

// ValidateSignIn checks the login form. No remote call is made when any
// field fails.
func ValidateSignIn(email, password string) FieldErrors {
	errs := FieldErrors{}
	email = strings.TrimSpace(email)
	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailRegex.MatchString(email) {
		errs["email"] = "Please enter a valid email address"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// ValidateSignUp checks the registration form, including the password
// policy: at least 8 characters with an uppercase letter, a digit, and a
// special character.
func ValidateSignUp(email, password, confirmPassword string) FieldErrors {
	errs := ValidateSignIn(email, password)

	if password != "" {
		switch {
		case len(password) < 8:
			errs["password"] = "Password must be at least 8 characters"
		case !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") ||
			!strings.ContainsAny(password, "0123456789") ||
			!strings.ContainsAny(password, "!@#$%^&*"):
			errs["password"] = "Password must contain an uppercase letter, number, and special character"
		}
	}

	if confirmPassword == "" {
		errs["confirm_password"] = "Please confirm your password"
	} else if password != confirmPassword {
		errs["confirm_password"] = "Passwords do not match"
	}
	return errs
}

// SignIn validates the form and authenticates. Field errors come back
// without a remote call; a remote rejection comes back as err.
func (a *AuthFlow) SignIn(ctx context.Context, email, password string) (*backend.Session, FieldErrors, error) {
	if errs := ValidateSignIn(email, password); !errs.Valid() {
		return nil, errs, nil
	}

	session, err := a.client.Auth().SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		a.logger.Error().Err(err).Msg("sign-in failed")
		return nil, nil, err
	}
	return session, nil, nil
}

// SignUp validates the form and registers a new account.
func (a *AuthFlow) SignUp(ctx context.Context, email, password, confirmPassword string) (*backend.Session, FieldErrors, error) {
	if errs := ValidateSignUp(email, password, confirmPassword); !errs.Valid() {
		return nil, errs, nil
	}

	session, err := a.client.Auth().SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		a.logger.Error().Err(err).Msg("sign-up failed")
		return nil, nil, err
	}
	return session, nil, nil
}

// SignOut ends the current session.
func (a *AuthFlow) SignOut(ctx context.Context) error {
	if err := a.client.Auth().SignOut(ctx); err != nil {
		a.logger.Error().Err(err).Msg("sign-out failed")
		return err
	}
	return nil
}
