// Package validation checks sign-in and sign-up payloads before they reach the
// identity provider. Everything here is a pure function of its input.
package validation

import (
	"net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
)

const (
	MsgInvalidEmail     = "Please enter a valid email."
	MsgInvalidLoginID   = "Please enter a valid email or phone number."
	MsgPasswordRequired = "Password is required."
	MsgFullNameShort    = "Full name must be at least 2 characters."
	MsgPasswordShort    = "Password must be at least 8 characters."
	MsgPasswordWeak     = "Password must include upper and lower case letters, a number, and a symbol."
	MsgPasswordMismatch = "Passwords don't match."
	MsgRoleRequired     = "Please select a role."
	MsgClubIDRequired   = "Club ID is required for Sunrise members."
	MsgTermsRequired    = "You must accept the terms and conditions."
	MsgInvalidPhone     = "Please enter a valid phone number."

	minPasswordLen = 8
	minFullNameLen = 2
)

// FieldErrors maps a request field (by its JSON name) to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type IdentifierKind string

const (
	IdentifierEmail IdentifierKind = "email"
	IdentifierPhone IdentifierKind = "phone"
)

// Credentials is a validated login payload. It only lives for one submit.
type Credentials struct {
	Identifier string
	Kind       IdentifierKind
	Password   string
	RememberMe bool
}

// Signup is a validated sign-up payload. ClubID is set only for club roles.
type Signup struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     string
	ClubID   string
}

type Options struct {
	StrictPassword bool
}

// ValidateLogin checks the shape of a sign-in submit. It never checks the
// password against anything; that is the provider's job.
func ValidateLogin(req dto.LoginRequest) (*Credentials, FieldErrors) {
	errs := FieldErrors{}

	id := strings.TrimSpace(req.EmailOrPhone)
	var kind IdentifierKind
	switch {
	case IsEmail(id):
		kind = IdentifierEmail
		id = strings.ToLower(id)
	case IsPhone(id):
		kind = IdentifierPhone
		id = NormalizePhone(id)
	default:
		errs["emailOrPhone"] = MsgInvalidLoginID
	}

	if req.Password == "" {
		errs["password"] = MsgPasswordRequired
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &Credentials{
		Identifier: id,
		Kind:       kind,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	}, nil
}

// ValidateSignup checks every sign-up field and the cross-field rules. All
// failures are reported at once; the confirmation check runs even when the
// password itself is rejected.
func ValidateSignup(req dto.SignupRequest, opts Options) (*Signup, FieldErrors) {
	errs := FieldErrors{}

	fullName := strings.TrimSpace(req.FullName)
	if utf8.RuneCountInString(fullName) < minFullNameLen {
		errs["fullName"] = MsgFullNameShort
	}

	email := strings.TrimSpace(req.Email)
	if !IsEmail(email) {
		errs["email"] = MsgInvalidEmail
	}

	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		if IsPhone(phone) {
			phone = NormalizePhone(phone)
		} else {
			errs["phone"] = MsgInvalidPhone
		}
	}

	if msg := checkPassword(req.Password, opts); msg != "" {
		errs["password"] = msg
	}
	if req.ConfirmPassword != req.Password {
		errs["confirmPassword"] = MsgPasswordMismatch
	}

	clubID := strings.TrimSpace(req.ClubID)
	switch req.Role {
	case models.RoleSunriseMember:
		if clubID == "" {
			errs["clubId"] = MsgClubIDRequired
		}
	case models.RoleUser:
		clubID = ""
	default:
		errs["role"] = MsgRoleRequired
	}

	if !req.Terms {
		errs["terms"] = MsgTermsRequired
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &Signup{
		FullName: fullName,
		Email:    strings.ToLower(email),
		Phone:    phone,
		Password: req.Password,
		Role:     req.Role,
		ClubID:   clubID,
	}, nil
}

func checkPassword(pw string, opts Options) string {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return MsgPasswordShort
	}
	if opts.StrictPassword {
		c := classify(pw)
		if !c.upper || !c.lower || !c.digit || !c.symbol {
			return MsgPasswordWeak
		}
	}
	return ""
}

// IsEmail reports whether s is a bare address with a dotted domain.
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// IsPhone accepts 10 to 15 digits with an optional leading '+' and common
// separators.
func IsPhone(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// NormalizePhone strips separators, keeping a leading '+'.
func NormalizePhone(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
