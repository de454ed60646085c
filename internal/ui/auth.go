package ui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/bus"
	"github.com/inheir-ai/inheir-console/internal/notify"
	"github.com/inheir-ai/inheir-console/internal/session"
	"github.com/inheir-ai/inheir-console/internal/validate"
)

// Username availability sub-states for the sign-up form.
const (
	availUnknown = iota
	availChecking
	availFree
	availTaken
)

// authScreen holds the sign-in/sign-up forms and their transient state.
type authScreen struct {
	ui *UI

	pages      *tview.Pages
	signInForm *tview.Form
	signUpForm *tview.Form
	signInErrs *tview.TextView
	signUpErrs *tview.TextView
	availLabel *tview.TextView

	mode string // "signin" or "signup"

	availability int
	availTimer   *time.Timer
	consented    bool
	submitting   bool
}

// showAuth routes to the auth screen, building it on first use.
func (ui *UI) showAuth() {
	if ui.auth == nil {
		ui.auth = newAuthScreen(ui)
		ui.pages.AddPage(pageAuth, ui.auth.pages, true, false)
	}
	ui.auth.reset()
	ui.pages.SwitchToPage(pageAuth)
	ui.setStatus("Tab switch fields | Ctrl+S toggle sign-in/sign-up | Ctrl+Q quit")
}

func newAuthScreen(ui *UI) *authScreen {
	a := &authScreen{ui: ui, mode: "signin"}
	a.pages = tview.NewPages()

	a.buildSignIn()
	a.buildSignUp()

	a.pages.AddPage("signin", center(a.signInPanel(), 60, 16), true, true)
	a.pages.AddPage("signup", center(a.signUpPanel(), 60, 22), true, false)
	return a
}

func (a *authScreen) reset() {
	a.submitting = false
	a.signInErrs.SetText("")
	a.signUpErrs.SetText("")
	a.setAvailability(availUnknown)
	a.mode = "signin"
	a.pages.SwitchToPage("signin")
}

func (a *authScreen) toggleMode() {
	if a.submitting {
		return
	}
	if a.mode == "signin" {
		a.mode = "signup"
		a.pages.SwitchToPage("signup")
	} else {
		a.mode = "signin"
		a.pages.SwitchToPage("signin")
	}
}

func (a *authScreen) buildSignIn() {
	theme := a.ui.theme
	a.signInErrs = tview.NewTextView().SetDynamicColors(true)

	a.signInForm = tview.NewForm().
		AddInputField("Username", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil)
	a.signInForm.AddButton("Sign In", a.submitSignIn)
	a.signInForm.AddButton("Create account", a.toggleMode)
	a.signInForm.SetBorder(true).SetTitle(" Sign In ").SetTitleAlign(tview.AlignLeft)
	a.signInForm.SetBackgroundColor(theme.Surface)
	a.signInForm.SetFieldBackgroundColor(theme.SelectionBg)
	a.signInForm.SetButtonBackgroundColor(theme.Border)
	a.signInForm.SetLabelColor(theme.TextPrimary)
}

func (a *authScreen) buildSignUp() {
	theme := a.ui.theme
	a.signUpErrs = tview.NewTextView().SetDynamicColors(true)
	a.availLabel = tview.NewTextView().SetDynamicColors(true)

	a.signUpForm = tview.NewForm().
		AddInputField("Full name", "", 30, nil, nil).
		AddInputField("Username", "", 30, nil, func(text string) { a.scheduleAvailabilityCheck(text) }).
		AddInputField("Email", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil).
		AddCheckbox("I agree to the terms of service", false, func(checked bool) {
			a.consented = checked
			a.applySignUpGate()
		})
	a.signUpForm.AddButton("Sign Up", a.submitSignUp)
	a.signUpForm.AddButton("Back to sign in", a.toggleMode)
	a.signUpForm.SetBorder(true).SetTitle(" Create Account ").SetTitleAlign(tview.AlignLeft)
	a.signUpForm.SetBackgroundColor(theme.Surface)
	a.signUpForm.SetFieldBackgroundColor(theme.SelectionBg)
	a.signUpForm.SetButtonBackgroundColor(theme.Border)
	a.signUpForm.SetLabelColor(theme.TextPrimary)
}

func (a *authScreen) signInPanel() tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.signInForm, 0, 1, true).
		AddItem(a.signInErrs, 2, 0, false)
}

func (a *authScreen) signUpPanel() tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.signUpForm, 0, 1, true).
		AddItem(a.availLabel, 1, 0, false).
		AddItem(a.signUpErrs, 2, 0, false)
}

// scheduleAvailabilityCheck debounces keystrokes, then asks the backend
// whether the username is taken. Stale responses are ignored by re-reading
// the field on delivery.
func (a *authScreen) scheduleAvailabilityCheck(username string) {
	if a.availTimer != nil {
		a.availTimer.Stop()
	}
	username = strings.TrimSpace(username)
	if username == "" {
		a.setAvailability(availUnknown)
		return
	}
	a.setAvailability(availChecking)
	a.availTimer = time.AfterFunc(400*time.Millisecond, func() {
		ctx, cancel := context.WithTimeout(a.ui.ctx, 10*time.Second)
		defer cancel()
		free, err := a.ui.client.UsernameAvailable(ctx, username)
		a.ui.app.QueueUpdateDraw(func() {
			current := strings.TrimSpace(a.fieldText(a.signUpForm, 1))
			if current != username {
				return
			}
			switch {
			case err != nil:
				a.setAvailability(availUnknown)
			case free:
				a.setAvailability(availFree)
			default:
				a.setAvailability(availTaken)
			}
		})
	})
}

// applySignUpGate enforces the sign-up sub-states: the remaining fields
// unlock only after the username is confirmed available, and the username
// field locks once it is. The Sign Up button additionally waits for consent.
func (a *authScreen) applySignUpGate() {
	if a.submitting {
		return
	}
	free := a.availability == availFree
	a.signUpForm.GetFormItem(1).SetDisabled(free)
	for _, i := range []int{0, 2, 3, 4} {
		a.signUpForm.GetFormItem(i).SetDisabled(!free)
	}
	a.signUpForm.GetButton(0).SetDisabled(!free || !a.consented)
}

func (a *authScreen) setAvailability(state int) {
	a.availability = state
	a.applySignUpGate()
	theme := a.ui.theme
	switch state {
	case availChecking:
		a.availLabel.SetText(fmt.Sprintf(" [%s]checking username...[-]", theme.TagMuted))
	case availFree:
		a.availLabel.SetText(fmt.Sprintf(" [%s]username available[-]", theme.TagSuccess))
	case availTaken:
		a.availLabel.SetText(fmt.Sprintf(" [%s]username already taken[-]", theme.TagError))
	default:
		a.availLabel.SetText("")
	}
}

func (a *authScreen) fieldText(form *tview.Form, index int) string {
	field, ok := form.GetFormItem(index).(*tview.InputField)
	if !ok {
		return ""
	}
	return field.GetText()
}

func (a *authScreen) setFormDisabled(form *tview.Form, disabled bool) {
	for i := 0; i < form.GetFormItemCount(); i++ {
		form.GetFormItem(i).SetDisabled(disabled)
	}
	for i := 0; i < form.GetButtonCount(); i++ {
		form.GetButton(i).SetDisabled(disabled)
	}
}

func (a *authScreen) renderErrors(view *tview.TextView, errs validate.FieldErrors) {
	if errs.OK() {
		view.SetText("")
		return
	}
	theme := a.ui.theme
	var b strings.Builder
	for _, field := range []string{"full_name", "username", "email", "password", "consent"} {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(&b, " [%s]%s: %s[-]\n", theme.TagError, field, msg)
		}
	}
	view.SetText(b.String())
}

func (a *authScreen) submitSignIn() {
	if a.submitting {
		return
	}
	form := validate.SignInForm{
		Username: strings.TrimSpace(a.fieldText(a.signInForm, 0)),
		Password: a.fieldText(a.signInForm, 1),
	}
	errs := validate.SignIn(form)
	a.renderErrors(a.signInErrs, errs)
	if !errs.OK() {
		return
	}

	a.submitting = true
	a.setFormDisabled(a.signInForm, true)

	go func() {
		ctx, cancel := context.WithTimeout(a.ui.ctx, 30*time.Second)
		defer cancel()
		expiry, err := a.ui.client.SignIn(ctx, api.SignInRequest{
			Username: form.Username,
			Password: form.Password,
		})
		a.ui.app.QueueUpdateDraw(func() {
			a.submitting = false
			a.setFormDisabled(a.signInForm, false)
			if err != nil {
				a.ui.logger.Warnw("sign-in failed", "username", form.Username, "error", err)
				a.signInErrs.SetText(fmt.Sprintf(" [%s]%s[-]", a.ui.theme.TagError, signInErrorText(err)))
				return
			}
			a.completeSignIn(session.Profile{Username: form.Username, ExpiresAt: expiry})
		})
	}()
}

func (a *authScreen) submitSignUp() {
	if a.submitting {
		return
	}
	form := validate.SignUpForm{
		FullName: strings.TrimSpace(a.fieldText(a.signUpForm, 0)),
		Username: strings.TrimSpace(a.fieldText(a.signUpForm, 1)),
		Email:    strings.TrimSpace(a.fieldText(a.signUpForm, 2)),
		Password: a.fieldText(a.signUpForm, 3),
	}
	errs := validate.SignUp(form)
	if !a.consented {
		errs["consent"] = "you must accept the terms of service"
	}
	if a.availability == availTaken {
		errs["username"] = "username already taken"
	}
	a.renderErrors(a.signUpErrs, errs)
	if !errs.OK() {
		return
	}

	a.submitting = true
	a.setFormDisabled(a.signUpForm, true)

	go func() {
		ctx, cancel := context.WithTimeout(a.ui.ctx, 30*time.Second)
		defer cancel()
		err := a.ui.client.SignUp(ctx, api.SignUpRequest{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
			FullName: form.FullName,
		})
		if err != nil {
			a.ui.app.QueueUpdateDraw(func() {
				a.submitting = false
				a.setFormDisabled(a.signUpForm, false)
				a.applySignUpGate()
				a.ui.logger.Warnw("sign-up failed", "username", form.Username, "error", err)
				a.signUpErrs.SetText(fmt.Sprintf(" [%s]%s[-]", a.ui.theme.TagError, signUpErrorText(err)))
			})
			return
		}

		// Account created; sign straight in with the same credentials.
		expiry, err := a.ui.client.SignIn(ctx, api.SignInRequest{
			Username: form.Username,
			Password: form.Password,
		})
		a.ui.app.QueueUpdateDraw(func() {
			a.submitting = false
			a.setFormDisabled(a.signUpForm, false)
			a.applySignUpGate()
			if err != nil {
				a.ui.notifier.Dispatch(notify.Info("Account created", "sign in to continue"))
				a.mode = "signin"
				a.pages.SwitchToPage("signin")
				return
			}
			a.completeSignIn(session.Profile{
				Username:  form.Username,
				FullName:  form.FullName,
				Email:     form.Email,
				ExpiresAt: expiry,
			})
		})
	}()
}

// completeSignIn persists the session, announces it, and routes home. Runs
// on the event loop.
func (a *authScreen) completeSignIn(p session.Profile) {
	if err := a.ui.session.SignIn(a.ui.ctx, p); err != nil {
		a.ui.logger.Warnw("session persist failed", "error", err)
	}
	a.ui.profile = p
	a.ui.refreshHeader()
	go a.ui.eventBus.PublishSession(a.ui.ctx, bus.SessionMessage{
		Username:  p.Username,
		Action:    bus.ActionSignedIn,
		Timestamp: time.Now().Unix(),
	})
	a.ui.notifier.Dispatch(notify.Success("Signed in as " + p.Username))
	a.ui.showHome()
}

func signInErrorText(err error) string {
	if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusForbidden) {
		return "invalid username or password"
	}
	return "sign-in failed, try again"
}

func signUpErrorText(err error) string {
	if api.IsStatus(err, http.StatusConflict) {
		return "username or email already registered"
	}
	return "sign-up failed, try again"
}

// center wraps p in a fixed-size box in the middle of the screen.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
