package validation

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() dto.SignupRequest {
	return dto.SignupRequest{
		FullName:        "Ada Lovelace",
		Email:           "Ada@Example.com",
		Phone:           "+1 (555) 010-0199",
		Password:        "Password123!",
		ConfirmPassword: "Password123!",
		Role:            "user",
		Terms:           true,
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.LoginRequest
		wantErrs []string
		wantKind IdentifierKind
		wantID   string
	}{
		{
			name:     "Email",
			req:      dto.LoginRequest{EmailOrPhone: " Admin@Example.com ", Password: "Password123!"},
			wantKind: IdentifierEmail,
			wantID:   "admin@example.com",
		},
		{
			name:     "Phone",
			req:      dto.LoginRequest{EmailOrPhone: "+1 555-010-0199", Password: "x"},
			wantKind: IdentifierPhone,
			wantID:   "+15550100199",
		},
		{
			name:     "BadIdentifier",
			req:      dto.LoginRequest{EmailOrPhone: "not-an-email", Password: "x"},
			wantErrs: []string{"emailOrPhone"},
		},
		{
			name:     "MissingPassword",
			req:      dto.LoginRequest{EmailOrPhone: "a@b.co"},
			wantErrs: []string{"password"},
		},
		{
			name:     "Empty",
			req:      dto.LoginRequest{},
			wantErrs: []string{"emailOrPhone", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, errs := ValidateLogin(tt.req)
			if len(tt.wantErrs) > 0 {
				assert.Nil(t, creds)
				for _, field := range tt.wantErrs {
					assert.Contains(t, errs, field)
				}
				assert.Len(t, errs, len(tt.wantErrs))
				return
			}
			require.Empty(t, errs)
			require.NotNil(t, creds)
			assert.Equal(t, tt.wantKind, creds.Kind)
			assert.Equal(t, tt.wantID, creds.Identifier)
		})
	}

	t.Run("ShortPasswordAllowed", func(t *testing.T) {
		creds, errs := ValidateLogin(dto.LoginRequest{EmailOrPhone: "a@b.co", Password: "1", RememberMe: true})
		require.Empty(t, errs)
		assert.True(t, creds.RememberMe)
	})
}

func TestValidateSignup(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s, errs := ValidateSignup(validSignup(), Options{})
		require.Empty(t, errs)
		assert.Equal(t, "ada@example.com", s.Email)
		assert.Equal(t, "+15550100199", s.Phone)
		assert.Equal(t, "user", s.Role)
		assert.Empty(t, s.ClubID)
	})

	t.Run("SunriseMemberWithoutClubID", func(t *testing.T) {
		for _, club := range []string{"", "   "} {
			req := validSignup()
			req.Role = "sunrise_member"
			req.ClubID = club

			_, errs := ValidateSignup(req, Options{})
			assert.Equal(t, MsgClubIDRequired, errs["clubId"])
		}
	})

	t.Run("SunriseMemberWithClubID", func(t *testing.T) {
		req := validSignup()
		req.Role = "sunrise_member"
		req.ClubID = " CLUB-7 "

		s, errs := ValidateSignup(req, Options{})
		require.Empty(t, errs)
		assert.Equal(t, "CLUB-7", s.ClubID)
	})

	t.Run("UserRoleDropsClubID", func(t *testing.T) {
		req := validSignup()
		req.ClubID = "CLUB-7"

		s, errs := ValidateSignup(req, Options{})
		require.Empty(t, errs)
		assert.Empty(t, s.ClubID)
	})

	t.Run("MismatchReportedEvenWhenPasswordInvalid", func(t *testing.T) {
		cases := []struct{ pw, confirm string }{
			{"Password123!", "Password123?"},
			{"short", "other"},
			{"", "x"},
		}
		for _, c := range cases {
			req := validSignup()
			req.Password = c.pw
			req.ConfirmPassword = c.confirm

			_, errs := ValidateSignup(req, Options{})
			assert.Equal(t, MsgPasswordMismatch, errs["confirmPassword"], "pw=%q", c.pw)
		}
	})

	t.Run("StrictPassword", func(t *testing.T) {
		req := validSignup()
		req.Password = "password123"
		req.ConfirmPassword = req.Password

		_, errs := ValidateSignup(req, Options{})
		assert.Empty(t, errs)

		_, errs = ValidateSignup(req, Options{StrictPassword: true})
		assert.Equal(t, MsgPasswordWeak, errs["password"])
	})

	t.Run("EveryFieldReported", func(t *testing.T) {
		req := dto.SignupRequest{
			FullName:        "A",
			Email:           "nope",
			Phone:           "12",
			Password:        "short",
			ConfirmPassword: "shorter",
			Role:            "club_member",
		}

		_, errs := ValidateSignup(req, Options{})
		assert.Equal(t, FieldErrors{
			"fullName":        MsgFullNameShort,
			"email":           MsgInvalidEmail,
			"phone":           MsgInvalidPhone,
			"password":        MsgPasswordShort,
			"confirmPassword": MsgPasswordMismatch,
			"role":            MsgRoleRequired,
			"terms":           MsgTermsRequired,
		}, errs)
		assert.NotContains(t, errs, "clubId")
		assert.Contains(t, errs.Error(), "validation failed: confirmPassword: ")
	})
}

func TestIsEmail(t *testing.T) {
	for _, s := range []string{"a@b.co", "first.last+tag@news.example.com"} {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range []string{"", "a@b", "a b@c.com", "Ada <ada@example.com>", "@example.com", "a@example."} {
		assert.False(t, IsEmail(s), s)
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		pw    string
		score int
		label string
	}{
		{"", 0, ""},
		{"abc", 1, "Weak"},
		{"abcdefgh", 2, "Fair"},
		{"Abcdefgh", 3, "Good"},
		{"Abcdefg1", 4, "Strong"},
		{"Password123!", 5, "Very Strong"},
		// Non-ASCII letters count as symbols.
		{"Passwörd", 4, "Strong"},
		{"密码密码密码密码", 2, "Fair"},
		{"ÉCOLE", 2, "Fair"},
	}
	for _, tt := range tests {
		got := PasswordStrength(tt.pw)
		assert.Equal(t, tt.score, got.Score, tt.pw)
		assert.Equal(t, tt.label, got.Label, tt.pw)
	}
}
