package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/docs"
	"github.com/inheir-ai/inheir-console/internal/notify"
	"github.com/inheir-ai/inheir-console/internal/session"
)

func newTestUI(t *testing.T) *UI {
	t.Helper()
	client, err := api.NewClient("http://127.0.0.1:1", time.Second, nil)
	require.NoError(t, err)
	ui := NewUI(context.Background(), Options{
		Client:  client,
		Session: session.NewMemory(),
	})
	t.Cleanup(ui.cancel)
	return ui
}

func TestRouteGuardSignedOut(t *testing.T) {
	ui := newTestUI(t)

	ui.showAuth()

	name, _ := ui.pages.GetFrontPage()
	assert.Equal(t, pageAuth, name)
}

func TestRouteGuardSignedIn(t *testing.T) {
	ui := newTestUI(t)
	require.NoError(t, ui.session.SignIn(context.Background(), session.Profile{
		Username:  "alice",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	ui.showHome()

	name, _ := ui.pages.GetFrontPage()
	assert.Equal(t, pageHome, name)
}

func TestSignUpAvailabilityLabel(t *testing.T) {
	ui := newTestUI(t)
	ui.showAuth()
	a := ui.auth

	assert.Equal(t, availUnknown, a.availability)
	assert.Empty(t, a.availLabel.GetText(true))

	a.setAvailability(availChecking)
	assert.Contains(t, a.availLabel.GetText(true), "checking username")

	a.setAvailability(availTaken)
	assert.Contains(t, a.availLabel.GetText(true), "already taken")

	a.setAvailability(availFree)
	assert.Contains(t, a.availLabel.GetText(true), "username available")
}

func TestFilterCases(t *testing.T) {
	cases := []api.CaseSummary{
		{CaseID: "a", Status: api.StatusOpen},
		{CaseID: "b", Status: api.StatusResolved},
		{CaseID: "c", Status: api.StatusOpen},
		{CaseID: "d", Status: api.StatusAborted},
	}

	open := filterCases(cases, api.StatusOpen)
	require.Len(t, open, 2)
	assert.Equal(t, "a", open[0].CaseID)
	assert.Equal(t, "c", open[1].CaseID)

	assert.Len(t, filterCases(cases, api.StatusResolved), 1)
	assert.Len(t, filterCases(cases, api.StatusAborted), 1)
	assert.Empty(t, filterCases(nil, api.StatusOpen))
}

func TestTabSwitchRendersMatchingCases(t *testing.T) {
	ui := newTestUI(t)
	ui.buildHome()
	ui.cases = []api.CaseSummary{
		{CaseID: "a", Title: "Estate of Smith", Status: api.StatusOpen, CreatedAt: time.Now()},
		{CaseID: "b", Title: "Deed dispute", Status: api.StatusResolved, CreatedAt: time.Now()},
	}

	ui.selectTab(api.StatusResolved)
	require.Equal(t, 1, ui.caseList.GetItemCount())
	main, _ := ui.caseList.GetItemText(0)
	assert.Equal(t, "Deed dispute", main)

	ui.selectTab(api.StatusAborted)
	// Empty tabs render a single muted placeholder row.
	assert.Equal(t, 1, ui.caseList.GetItemCount())
}

func TestCaseViewStartsWithLoadingPlaceholder(t *testing.T) {
	ui := newTestUI(t)
	view := newCaseView(ui, "case-9")

	assert.Equal(t, caseLoading, view.state)
	assert.Contains(t, view.summaryView.GetText(true), "Loading case case-9")
	assert.False(t, view.statusControlsVisible())
}

func TestStatusControlsOnlyForOpenCases(t *testing.T) {
	ui := newTestUI(t)
	view := newCaseView(ui, "case-9")

	view.state = caseReady
	view.data = &api.CaseData{Meta: api.CaseSummary{CaseID: "case-9", Status: api.StatusOpen}}
	assert.True(t, view.statusControlsVisible())

	view.data.Meta.Status = api.StatusResolved
	assert.False(t, view.statusControlsVisible())

	view.data.Meta.Status = api.StatusAborted
	assert.False(t, view.statusControlsVisible())
}

func TestCloseCaseViewDisposesViewport(t *testing.T) {
	ui := newTestUI(t)
	view := newCaseView(ui, "case-9")
	ui.caseViews["case-9"] = view
	ui.pages.AddPage(casePageName("case-9"), view.layout, true, false)
	view.showMap()
	require.NotNil(t, view.viewport)

	ui.closeCaseView("case-9")

	assert.True(t, view.viewport.Disposed())
	assert.NotContains(t, ui.caseViews, "case-9")
	assert.False(t, ui.pages.HasPage(casePageName("case-9")))
}

func TestToasterSeverityTags(t *testing.T) {
	ui := newTestUI(t)

	success := ui.toaster.format(notify.Success("saved"))
	assert.Contains(t, success, ui.theme.TagSuccess)

	failure := ui.toaster.format(notify.Error("boom"))
	assert.Contains(t, failure, ui.theme.TagError)

	info := ui.toaster.format(notify.Info("heads up", "details"))
	assert.Contains(t, info, "details")
}

func TestCreateCaseDropdownFollowsWatcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deed.pdf"), []byte("x"), 0644))
	watcher, err := docs.NewWatcher(docs.WatcherOptions{Dir: dir})
	require.NoError(t, err)

	client, err := api.NewClient("http://127.0.0.1:1", time.Second, nil)
	require.NoError(t, err)
	ui := NewUI(context.Background(), Options{
		Client:  client,
		Session: session.NewMemory(),
		Watcher: watcher,
	})
	t.Cleanup(ui.cancel)

	ui.showCreateCase()
	require.NotNil(t, ui.docPicker)
	require.NotNil(t, ui.docRefresh)
	assert.Equal(t, 1, ui.docPicker.GetOptionCount())

	// A file landing in the folder while the dialog is open shows up
	// without reopening, and the current selection survives.
	ui.docRefresh([]string{"deed.pdf", "will.txt"})
	assert.Equal(t, 2, ui.docPicker.GetOptionCount())
	idx, option := ui.docPicker.GetCurrentOption()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "deed.pdf", option)
}

func TestAnalysisFailureNotifies(t *testing.T) {
	ui := newTestUI(t)
	recorder := notify.NewRecorder()
	ui.notifier = recorder

	ui.showGIS()
	ui.gisView.input.SetText("101 Main St")
	ui.gisView.submit()

	assert.Eventually(t, func() bool {
		return recorder.Last().Severity == notify.SeverityError
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReportActionMergesStatus(t *testing.T) {
	reports := []api.Report{
		{ID: "r1", Address: "1 Elm St", Status: "pending"},
		{ID: "r2", Address: "2 Elm St", Status: "pending"},
	}

	applyReportAction(reports, 0, "verify")
	assert.Equal(t, "verified", reports[0].Status)

	applyReportAction(reports, 1, "reject")
	assert.Equal(t, "rejected", reports[1].Status)

	// Out-of-range indices leave the slice alone.
	applyReportAction(reports, 5, "verify")
	applyReportAction(reports, -1, "reject")
	assert.Equal(t, "verified", reports[0].Status)
	assert.Equal(t, "rejected", reports[1].Status)
}

func TestThemeFallbackWithoutTrueColor(t *testing.T) {
	fallback := themeFor("dark", false)
	assert.Equal(t, themeFallback(), fallback)
	assert.Equal(t, "red", fallback.TagError)
	assert.Equal(t, "green", fallback.TagSuccess)

	assert.Equal(t, themeDark(), themeFor("dark", true))
	assert.Equal(t, themeLight(), themeFor("light", true))
}

func TestDetectTrueColorEnv(t *testing.T) {
	t.Setenv("COLORTERM", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, detectTrueColor())

	t.Setenv("COLORTERM", "truecolor")
	assert.True(t, detectTrueColor())
}

func TestRiskTagMapping(t *testing.T) {
	theme := themeDark()
	assert.Equal(t, theme.TagRiskHigh, riskTag(theme, "High"))
	assert.Equal(t, theme.TagRiskMedium, riskTag(theme, "medium"))
	assert.Equal(t, theme.TagRiskLow, riskTag(theme, "Low"))
	assert.Equal(t, theme.TagRiskLow, riskTag(theme, ""))
}
