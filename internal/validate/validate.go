// Package validate implements the client-side form rules. A form that fails
// validation never reaches the network; callers surface the per-field
// messages inline.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
)

// FieldErrors maps field name to its validation message. Empty means valid.
type FieldErrors map[string]string

// OK reports whether the form passed.
func (fe FieldErrors) OK() bool {
	return len(fe) == 0
}

var (
	fullNameRe = regexp.MustCompile(`^[A-Za-z ]+$`)
	usernameRe = regexp.MustCompile(`^\w+$`)
)

const (
	maxNameLen     = 20
	minPasswordLen = 8
	maxPasswordLen = 20
)

// SignUpForm holds the registration fields.
type SignUpForm struct {
	FullName string
	Username string
	Email    string
	Password string
}

// SignInForm holds the credential fields.
type SignInForm struct {
	Username string
	Password string
}

// CaseForm holds the case-creation fields.
type CaseForm struct {
	Title        string
	Address      string
	MainDocument string
}

// ReportForm holds the property-report fields.
type ReportForm struct {
	FullName string
	Email    string
	Report   string
	Address  string
}

// SignUp validates a registration form.
func SignUp(f SignUpForm) FieldErrors {
	errs := FieldErrors{}

	if msg := checkName(f.FullName); msg != "" {
		errs["full_name"] = msg
	} else if !fullNameRe.MatchString(f.FullName) {
		errs["full_name"] = "Full name must contain only letters and spaces"
	}

	if msg := checkName(f.Username); msg != "" {
		errs["username"] = msg
	} else if !usernameRe.MatchString(f.Username) {
		errs["username"] = "Username must contain only alphanumeric characters"
	}

	if msg := checkEmail(f.Email); msg != "" {
		errs["email"] = msg
	}

	if msg := checkPassword(f.Password); msg != "" {
		errs["password"] = msg
	}

	return errs
}

// SignIn validates a credential form.
func SignIn(f SignInForm) FieldErrors {
	errs := FieldErrors{}

	if msg := checkName(f.Username); msg != "" {
		errs["username"] = msg
	} else if !usernameRe.MatchString(f.Username) {
		errs["username"] = "Username must contain only alphanumeric characters"
	}

	if msg := checkPassword(f.Password); msg != "" {
		errs["password"] = msg
	}

	return errs
}

// NewCase validates the case-creation form. Title, address, and the main
// document are required; supporting documents are optional.
func NewCase(f CaseForm) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Case title is required"
	}
	if strings.TrimSpace(f.Address) == "" {
		errs["address"] = "Case address is required"
	}
	if strings.TrimSpace(f.MainDocument) == "" {
		errs["document"] = "Main document is required"
	}
	return errs
}

// Report validates the property-report form.
func Report(f ReportForm) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.FullName) == "" {
		errs["full_name"] = "Full name is required"
	}
	if msg := checkEmail(f.Email); msg != "" {
		errs["email"] = msg
	}
	if strings.TrimSpace(f.Report) == "" {
		errs["report"] = "Reason for reporting is required"
	}
	if strings.TrimSpace(f.Address) == "" {
		errs["address"] = "Address is required"
	}
	return errs
}

func checkName(name string) string {
	if name == "" {
		return "Name shouldn't be empty"
	}
	if len(name) > maxNameLen {
		return "Name must be less than 20 characters"
	}
	return ""
}

func checkEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	// RFC shape check only; deliverability is the backend's problem.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Invalid email format"
	}
	return ""
}

func checkPassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < minPasswordLen {
		return "Password must be at least 8 characters"
	}
	if len(password) > maxPasswordLen {
		return "Password must be less than 20 characters"
	}
	return ""
}
