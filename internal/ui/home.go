package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/bus"
	"github.com/inheir-ai/inheir-console/internal/notify"
	"github.com/inheir-ai/inheir-console/internal/store"
	"github.com/inheir-ai/inheir-console/internal/validate"
)

// statusTabs is the fixed tab order on the home screen.
var statusTabs = []api.CaseStatus{api.StatusOpen, api.StatusResolved, api.StatusAborted}

// showHome routes to the case list, building it on first use, and kicks
// off a refresh.
func (ui *UI) showHome() {
	if !ui.pages.HasPage(pageHome) {
		ui.buildHome()
	}
	ui.pages.SwitchToPage(pageHome)
	ui.setStatus("1/2/3 status tabs | Enter open case | n new case | g GIS | r report | Ctrl+L sign out")
	go ui.refreshCases()
	go ui.checkAdmin()
}

func (ui *UI) buildHome() {
	theme := ui.theme

	ui.tabBar = tview.NewTextView().SetDynamicColors(true)
	ui.tabBar.SetBackgroundColor(theme.Surface)

	ui.caseList = tview.NewList().ShowSecondaryText(true)
	ui.caseList.SetBorder(true).SetTitle(" Cases ").SetTitleAlign(tview.AlignLeft)
	ui.caseList.SetBackgroundColor(theme.Surface)
	ui.caseList.SetSelectedBackgroundColor(theme.SelectionBg)
	ui.caseList.SetSelectedTextColor(theme.SelectionFg)
	ui.caseList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		visible := filterCases(ui.cases, ui.statusTab)
		if index >= 0 && index < len(visible) {
			ui.openCase(visible[index].CaseID)
		}
	})
	ui.caseList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case '1':
			ui.selectTab(api.StatusOpen)
			return nil
		case '2':
			ui.selectTab(api.StatusResolved)
			return nil
		case '3':
			ui.selectTab(api.StatusAborted)
			return nil
		case 'n':
			ui.showCreateCase()
			return nil
		case 'g':
			ui.showGIS()
			return nil
		case 'r':
			ui.showReportForm()
			return nil
		case 'R':
			if ui.isAdmin {
				ui.showReports()
				return nil
			}
		}
		if event.Key() == tcell.KeyCtrlL {
			ui.signOut()
			return nil
		}
		return event
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.tabBar, 1, 0, false).
		AddItem(ui.caseList, 0, 1, true)

	ui.pages.AddPage(pageHome, layout, true, false)
	ui.renderTabs()
}

func (ui *UI) selectTab(status api.CaseStatus) {
	ui.statusTab = status
	ui.renderTabs()
	ui.renderCases()
}

func (ui *UI) renderTabs() {
	theme := ui.theme
	var b strings.Builder
	for i, tab := range statusTabs {
		visible := filterCases(ui.cases, tab)
		if tab == ui.statusTab {
			fmt.Fprintf(&b, " [%s::b][%d] %s (%d)[-:-:-] ", theme.TagAccent, i+1, tab, len(visible))
		} else {
			fmt.Fprintf(&b, " [%s][%d] %s (%d)[-] ", theme.TagMuted, i+1, tab, len(visible))
		}
	}
	ui.tabBar.SetText(b.String())
}

// filterCases returns the cases matching status, preserving order.
func filterCases(cases []api.CaseSummary, status api.CaseStatus) []api.CaseSummary {
	out := make([]api.CaseSummary, 0, len(cases))
	for _, c := range cases {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

func (ui *UI) renderCases() {
	ui.caseList.Clear()
	visible := filterCases(ui.cases, ui.statusTab)
	if len(visible) == 0 {
		ui.caseList.AddItem(fmt.Sprintf("[%s]no %s cases[-]", ui.theme.TagMuted, strings.ToLower(string(ui.statusTab))), "", 0, nil)
		return
	}
	for _, c := range visible {
		secondary := fmt.Sprintf("[%s]%s · %s[-]", ui.theme.TagMuted, c.CaseID, c.CreatedAt.Format("2006-01-02 15:04"))
		ui.caseList.AddItem(c.Title, secondary, 0, nil)
	}
}

// refreshCases pulls the case list from the backend, caching it locally;
// on failure the cached copy keeps the screen usable.
func (ui *UI) refreshCases() {
	ctx, cancel := context.WithTimeout(ui.ctx, 30*time.Second)
	defer cancel()

	cases, err := ui.client.CaseHistory(ctx)
	if err != nil {
		ui.logger.Warnw("case history fetch failed", "error", err)
		if ui.cache != nil {
			if cached, cerr := ui.cache.CachedCases(ctx); cerr == nil && len(cached) > 0 {
				cases = cached
				ui.notifier.Dispatch(notify.Info("Offline case list", "showing cached cases"))
			} else {
				ui.notifier.Dispatch(notify.Error("Could not load cases"))
				return
			}
		} else {
			ui.notifier.Dispatch(notify.Error("Could not load cases"))
			return
		}
	} else if ui.cache != nil {
		if cerr := ui.cache.ReplaceCases(ctx, cases); cerr != nil {
			ui.logger.Debugw("case cache write failed", "error", cerr)
		}
	}

	ui.app.QueueUpdateDraw(func() {
		ui.cases = cases
		ui.renderTabs()
		ui.renderCases()
	})
}

func (ui *UI) checkAdmin() {
	ctx, cancel := context.WithTimeout(ui.ctx, 10*time.Second)
	defer cancel()
	admin, err := ui.client.IsAdmin(ctx)
	if err != nil {
		ui.logger.Debugw("admin check failed", "error", err)
		return
	}
	ui.app.QueueUpdateDraw(func() {
		ui.isAdmin = admin
		if admin {
			ui.setStatus("1/2/3 status tabs | Enter open case | n new | g GIS | r report | R reports | Ctrl+L sign out")
		}
	})
}

// showCreateCase opens the new-case dialog. The main document dropdown is
// fed by the watched documents folder.
func (ui *UI) showCreateCase() {
	theme := ui.theme
	files := []string{}
	if ui.watcher != nil {
		files = ui.watcher.Files()
	}
	if len(files) == 0 {
		ui.notifier.Dispatch(notify.Error("No documents found in the documents folder"))
		return
	}

	errView := tview.NewTextView().SetDynamicColors(true)
	selected := files[0]

	form := tview.NewForm().
		AddInputField("Title", "", 40, nil, nil).
		AddInputField("Address", "", 40, nil, nil).
		AddDropDown("Document", files, 0, func(option string, index int) {
			selected = option
		}).
		AddInputField("Supporting (comma-separated)", "", 40, nil, nil)
	form.SetBorder(true).SetTitle(" New Case ").SetTitleAlign(tview.AlignLeft)
	form.SetBackgroundColor(theme.Surface)
	form.SetFieldBackgroundColor(theme.SelectionBg)

	// Files dropped into the watched folder appear in the picker while the
	// dialog is open. The current selection survives when it still exists.
	picker := form.GetFormItem(2).(*tview.DropDown)
	ui.docPicker = picker
	ui.docRefresh = func(files []string) {
		if len(files) == 0 {
			return
		}
		idx := 0
		for i, f := range files {
			if f == selected {
				idx = i
				break
			}
		}
		picker.SetOptions(files, func(option string, index int) {
			selected = option
		})
		picker.SetCurrentOption(idx)
	}

	const modal = "create-case"
	dismiss := func() {
		ui.docPicker = nil
		ui.docRefresh = nil
		ui.pages.RemovePage(modal)
	}
	setDisabled := func(disabled bool) {
		for i := 0; i < form.GetFormItemCount(); i++ {
			form.GetFormItem(i).SetDisabled(disabled)
		}
		for i := 0; i < form.GetButtonCount(); i++ {
			form.GetButton(i).SetDisabled(disabled)
		}
	}

	form.AddButton("Create", func() {
		title := strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText())
		address := strings.TrimSpace(form.GetFormItem(1).(*tview.InputField).GetText())
		supportingRaw := form.GetFormItem(3).(*tview.InputField).GetText()

		errs := validate.NewCase(validate.CaseForm{Title: title, Address: address, MainDocument: selected})
		if !errs.OK() {
			var b strings.Builder
			for field, msg := range errs {
				fmt.Fprintf(&b, " [%s]%s: %s[-]\n", theme.TagError, field, msg)
			}
			errView.SetText(b.String())
			return
		}

		var supporting []string
		for _, s := range strings.Split(supportingRaw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				supporting = append(supporting, s)
			}
		}

		// The dialog stays open while the upload runs so a failure can be
		// retried with the fields intact.
		setDisabled(true)
		errView.SetText(fmt.Sprintf(" [%s]Creating case...[-]", theme.TagMuted))
		go ui.createCase(title, address, selected, supporting, func(err error) {
			setDisabled(false)
			if err != nil {
				errView.SetText(fmt.Sprintf(" [%s]Case creation failed, try again.[-]", theme.TagError))
				return
			}
			dismiss()
		})
	})
	form.AddButton("Cancel", dismiss)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errView, 2, 0, false)
	ui.pages.AddPage(modal, center(layout, 70, 18), true, true)
}

// createCase uploads the documents and, when done, invokes settle on the
// event loop with the outcome so the dialog can close or stay for retry.
func (ui *UI) createCase(title, address, document string, supporting []string, settle func(error)) {
	ctx, cancel := context.WithTimeout(ui.ctx, 2*time.Minute)
	defer cancel()

	caseID, err := ui.client.CreateCase(ctx, title, address, document, supporting)
	if err != nil {
		ui.logger.Warnw("case creation failed", "title", title, "error", err)
		ui.notifier.Dispatch(notify.Error("Case creation failed"))
		ui.app.QueueUpdateDraw(func() { settle(err) })
		return
	}

	if ui.cache != nil {
		ui.cache.LogAction(ctx, store.AuditEntry{
			Action: "case_created",
			CaseID: caseID,
			Actor:  ui.profile.Username,
			Details: map[string]string{
				"title":   title,
				"address": address,
			},
		})
	}
	ui.eventBus.PublishCase(ctx, bus.CaseMessage{
		CaseID:    caseID,
		Action:    bus.ActionCreated,
		Status:    string(api.StatusOpen),
		Timestamp: time.Now().Unix(),
	})

	ui.notifier.Dispatch(notify.Success("Case created"))
	ui.refreshCases()
	ui.app.QueueUpdateDraw(func() {
		settle(nil)
		ui.openCase(caseID)
	})
}

// showReportForm opens the anonymous property-report form.
func (ui *UI) showReportForm() {
	theme := ui.theme
	errView := tview.NewTextView().SetDynamicColors(true)

	form := tview.NewForm().
		AddInputField("Full name", ui.profile.FullName, 40, nil, nil).
		AddInputField("Email", ui.profile.Email, 40, nil, nil).
		AddInputField("Address", "", 40, nil, nil).
		AddTextArea("Report", "", 40, 5, 0, nil)
	form.SetBorder(true).SetTitle(" Submit Report ").SetTitleAlign(tview.AlignLeft)
	form.SetBackgroundColor(theme.Surface)
	form.SetFieldBackgroundColor(theme.SelectionBg)

	const modal = "report-form"
	dismiss := func() { ui.pages.RemovePage(modal) }

	form.AddButton("Submit", func() {
		rf := validate.ReportForm{
			FullName: strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText()),
			Email:    strings.TrimSpace(form.GetFormItem(1).(*tview.InputField).GetText()),
			Address:  strings.TrimSpace(form.GetFormItem(2).(*tview.InputField).GetText()),
			Report:   strings.TrimSpace(form.GetFormItem(3).(*tview.TextArea).GetText()),
		}
		errs := validate.Report(rf)
		if !errs.OK() {
			var b strings.Builder
			for field, msg := range errs {
				fmt.Fprintf(&b, " [%s]%s: %s[-]\n", theme.TagError, field, msg)
			}
			errView.SetText(b.String())
			return
		}
		dismiss()
		go func() {
			ctx, cancel := context.WithTimeout(ui.ctx, 30*time.Second)
			defer cancel()
			_, err := ui.client.CreateReport(ctx, api.Report{
				FullName: rf.FullName,
				Email:    rf.Email,
				Address:  rf.Address,
				Report:   rf.Report,
			})
			if err != nil {
				ui.logger.Warnw("report submission failed", "error", err)
				ui.notifier.Dispatch(notify.Error("Report submission failed"))
				return
			}
			ui.notifier.Dispatch(notify.Success("Report submitted"))
		}()
	})
	form.AddButton("Cancel", dismiss)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errView, 2, 0, false)
	ui.pages.AddPage(modal, center(layout, 70, 18), true, true)
}

// showReports lists submitted reports for admins, with verify/reject.
func (ui *UI) showReports() {
	theme := ui.theme
	const modal = "reports"

	list := tview.NewList().ShowSecondaryText(true)
	list.SetBorder(true).SetTitle(" Reports (v verify, x reject, Esc close) ").SetTitleAlign(tview.AlignLeft)
	list.SetBackgroundColor(theme.Surface)

	var reports []api.Report
	render := func() {
		list.Clear()
		for _, r := range reports {
			main := fmt.Sprintf("%s [%s](%s)[-]", r.Address, theme.TagMuted, r.Status)
			list.AddItem(main, truncate(r.Report, 70), 0, nil)
		}
	}

	act := func(action string) {
		idx := list.GetCurrentItem()
		if idx < 0 || idx >= len(reports) {
			return
		}
		id := reports[idx].ID
		go func() {
			ctx, cancel := context.WithTimeout(ui.ctx, 15*time.Second)
			defer cancel()
			if err := ui.client.ReportAction(ctx, id, action); err != nil {
				ui.notifier.Dispatch(notify.Error("Report update failed"))
				return
			}
			ui.notifier.Dispatch(notify.Success("Report updated"))
			ui.app.QueueUpdateDraw(func() {
				applyReportAction(reports, idx, action)
				render()
			})
		}()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape:
			ui.pages.RemovePage(modal)
			return nil
		case event.Rune() == 'v':
			act("verify")
			return nil
		case event.Rune() == 'x':
			act("reject")
			return nil
		}
		return event
	})

	ui.pages.AddPage(modal, center(list, 90, 24), true, true)

	go func() {
		ctx, cancel := context.WithTimeout(ui.ctx, 30*time.Second)
		defer cancel()
		fetched, err := ui.client.AllReports(ctx)
		if err != nil {
			ui.logger.Warnw("reports fetch failed", "error", err)
			ui.notifier.Dispatch(notify.Error("Could not load reports"))
			return
		}
		ui.app.QueueUpdateDraw(func() {
			reports = fetched
			render()
		})
	}()
}

// applyReportAction folds a settled verify/reject back into the listed
// report so the row reflects the new status without a refetch.
func applyReportAction(reports []api.Report, idx int, action string) {
	if idx < 0 || idx >= len(reports) {
		return
	}
	switch action {
	case "verify":
		reports[idx].Status = "verified"
	case "reject":
		reports[idx].Status = "rejected"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
