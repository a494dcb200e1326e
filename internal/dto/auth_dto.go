package dto

import "time"

// LoginRequest mirrors the sign-in form. Field names match the form fields so
// validation errors can be shown inline.
type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
	RememberMe   bool   `json:"rememberMe"`
}

type SignupRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	ClubID          string `json:"clubId"`
	Terms           bool   `json:"terms"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

type PasswordStrengthResponse struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// ActionResponse is the result of a login, signup or federated sign-in submit.
type ActionResponse struct {
	Success      bool              `json:"success"`
	Status       string            `json:"status"`
	Message      string            `json:"message,omitempty"`
	Navigate     string            `json:"navigate,omitempty"`
	NextView     string            `json:"next_view,omitempty"`
	FieldErrors  map[string]string `json:"field_errors,omitempty"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"`
	User         *UserResponse     `json:"user,omitempty"`
}

type FederatedStartResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Provider    string `json:"provider"`
}

type SessionResponse struct {
	User    *UserResponse `json:"user"`
	Loading bool          `json:"loading"`
}

type DashboardResponse struct {
	Greeting string        `json:"greeting"`
	User     *UserResponse `json:"user"`
}

type ContentResponse struct {
	ContentSnippet string `json:"content_snippet"`
	Fallback       bool   `json:"fallback"`
}

type ErrorResponse struct {
	Error    bool   `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
