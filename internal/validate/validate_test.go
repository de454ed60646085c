package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignUpValidForm(t *testing.T) {
	errs := SignUp(SignUpForm{
		FullName: "Alice Smith",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.True(t, errs.OK())
}

func TestSignUpFieldRules(t *testing.T) {
	tests := []struct {
		name  string
		form  SignUpForm
		field string
	}{
		{"empty full name", SignUpForm{Username: "alice", Email: "a@b.com", Password: "password123"}, "full_name"},
		{"digits in full name", SignUpForm{FullName: "Alice 2nd", Username: "alice", Email: "a@b.com", Password: "password123"}, "full_name"},
		{"long full name", SignUpForm{FullName: strings.Repeat("a", 21), Username: "alice", Email: "a@b.com", Password: "password123"}, "full_name"},
		{"empty username", SignUpForm{FullName: "Alice", Email: "a@b.com", Password: "password123"}, "username"},
		{"username with spaces", SignUpForm{FullName: "Alice", Username: "a lice", Email: "a@b.com", Password: "password123"}, "username"},
		{"bad email", SignUpForm{FullName: "Alice", Username: "alice", Email: "not-an-email", Password: "password123"}, "email"},
		{"email with display name", SignUpForm{FullName: "Alice", Username: "alice", Email: "Alice <a@b.com>", Password: "password123"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := SignUp(tt.form)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestPasswordLengthBounds(t *testing.T) {
	base := SignUpForm{FullName: "Alice", Username: "alice", Email: "a@b.com"}

	for n := 0; n <= 25; n++ {
		form := base
		form.Password = strings.Repeat("x", n)
		errs := SignUp(form)
		if n >= 8 && n <= 20 {
			assert.NotContains(t, errs, "password", "length %d should pass", n)
		} else {
			assert.Contains(t, errs, "password", "length %d should fail", n)
		}
	}
}

func TestSignInShortPassword(t *testing.T) {
	errs := SignIn(SignInForm{Username: "alice", Password: "short"})
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "username")
}

func TestNewCaseRequiredFields(t *testing.T) {
	errs := NewCase(CaseForm{})
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "address")
	assert.Contains(t, errs, "document")

	errs = NewCase(CaseForm{Title: "Estate", Address: "12 Oak St", MainDocument: "will.pdf"})
	assert.True(t, errs.OK())
}

func TestReportRequiredFields(t *testing.T) {
	errs := Report(ReportForm{})
	assert.Contains(t, errs, "full_name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "report")
	assert.Contains(t, errs, "address")

	errs = Report(ReportForm{
		FullName: "Alice Smith",
		Email:    "alice@example.com",
		Report:   "suspicious listing",
		Address:  "12 Oak St",
	})
	assert.True(t, errs.OK())
}
