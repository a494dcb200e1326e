package auth

import (
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/validation"
)

type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusInvalid   Status = "invalid"
	StatusDismissed Status = "dismissed"
	StatusPending   Status = "pending"
)

const (
	ActionLogin          = "login"
	ActionSignup         = "signup"
	ActionFederatedStart = "federated_start"
	ActionFederated      = "federated"
	ActionSignOut        = "signout"
)

// Messages shown to the user. Provider failures collapse into these so the
// client cannot tell an unknown account from a wrong password.
const (
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgSignupSuccess      = "Welcome! Please sign in to continue."
	MsgEmailInUse         = "An account with this email already exists."
	MsgSignupFailed       = "An unexpected error occurred. Please try again."
	MsgFederatedFailed    = "An unexpected error occurred."
	MsgUnauthorizedDomain = "This domain is not authorized for Google sign-in. Add it to the authorized domains list."
	MsgFederationDisabled = "Google sign-in is not available."
	MsgFixFields          = "Please correct the highlighted fields."
	MsgPending            = "Your request is already being processed."
	MsgSignedOut          = "You have been signed out."
)

const (
	DashboardPath = "/dashboard"
	LoginView     = "login"
)

// Outcome is how a submitted action settled.
type Outcome struct {
	Status      Status
	Message     string
	Navigate    string
	NextView    string
	FieldErrors validation.FieldErrors
	Session     *identity.Session
	Challenge   *identity.FederatedChallenge
	// Code is the provider error code behind a failed outcome.
	Code        identity.Code
}

func (o Outcome) Succeeded() bool { return o.Status == StatusSuccess }

func pending() Outcome {
	return Outcome{Status: StatusPending, Message: MsgPending}
}

func invalid(errs validation.FieldErrors) Outcome {
	return Outcome{Status: StatusInvalid, Message: MsgFixFields, FieldErrors: errs}
}

func failed(code identity.Code, msg string) Outcome {
	return Outcome{Status: StatusFailed, Message: msg, Code: code}
}
