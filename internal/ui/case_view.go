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
	"github.com/inheir-ai/inheir-console/internal/chat"
	"github.com/inheir-ai/inheir-console/internal/gis"
	"github.com/inheir-ai/inheir-console/internal/notify"
	"github.com/inheir-ai/inheir-console/internal/store"
)

// Case view load states.
const (
	caseLoading = "loading"
	caseReady   = "ready"
	caseFailed  = "failed"
)

// Case view tabs.
const (
	tabChat = "chatbot"
	tabDocs = "documents"
	tabMap  = "map"
)

// caseView is one open case's detail screen: summary header, chatbot,
// documents, and map tabs. The map viewport is created lazily on first
// visit and lives until the view closes.
type caseView struct {
	ui *UI
	id string

	state string
	data  *api.CaseData
	loop  *chat.Loop

	// viewport is nil until the map tab is first shown.
	viewport *gis.Viewport

	activeTab string

	layout      *tview.Flex
	summaryView *tview.TextView
	tabBar      *tview.TextView
	tabPages    *tview.Pages
	chatView    *tview.TextView
	chatInput   *tview.InputField
	docsView    *tview.TextView
	mapView     *tview.TextView

	chatLoaded bool
}

func casePageName(id string) string { return pageCase + ":" + id }

// openCase shows the detail view for id, creating it when first opened.
func (ui *UI) openCase(id string) {
	if view, ok := ui.caseViews[id]; ok {
		ui.activeCase = id
		ui.pages.SwitchToPage(casePageName(id))
		view.updateStatusLine()
		return
	}

	view := newCaseView(ui, id)
	ui.caseViews[id] = view
	ui.activeCase = id
	ui.pages.AddPage(casePageName(id), view.layout, true, false)
	ui.pages.SwitchToPage(casePageName(id))
	view.updateStatusLine()
	go view.load()
}

// closeCaseView disposes the view's resources and returns to home.
func (ui *UI) closeCaseView(id string) {
	view, ok := ui.caseViews[id]
	if !ok {
		return
	}
	if view.viewport != nil {
		view.viewport.Dispose()
	}
	ui.pages.RemovePage(casePageName(id))
	delete(ui.caseViews, id)
	if ui.activeCase == id {
		ui.activeCase = ""
	}
}

func newCaseView(ui *UI, id string) *caseView {
	theme := ui.theme
	v := &caseView{ui: ui, id: id, state: caseLoading, activeTab: tabChat}

	v.summaryView = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	v.summaryView.SetBorder(true).SetTitle(" Case ").SetTitleAlign(tview.AlignLeft)
	v.summaryView.SetBackgroundColor(theme.Surface)
	v.summaryView.SetText(fmt.Sprintf("\n [%s]Loading case %s...[-]", theme.TagMuted, id))

	v.tabBar = tview.NewTextView().SetDynamicColors(true)
	v.tabBar.SetBackgroundColor(theme.Surface)

	v.chatView = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	v.chatView.SetBorder(true).SetTitle(" Assistant ").SetTitleAlign(tview.AlignLeft)
	v.chatView.SetBackgroundColor(theme.Surface)

	v.chatInput = tview.NewInputField().SetLabel(" > ").SetFieldWidth(0)
	v.chatInput.SetFieldBackgroundColor(theme.SelectionBg)
	v.chatInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			v.sendChat()
		}
	})

	v.docsView = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	v.docsView.SetBorder(true).SetTitle(" Documents ").SetTitleAlign(tview.AlignLeft)
	v.docsView.SetBackgroundColor(theme.Surface)

	v.mapView = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	v.mapView.SetBorder(true).SetTitle(" Map ").SetTitleAlign(tview.AlignLeft)
	v.mapView.SetBackgroundColor(theme.Surface)

	chatPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.chatView, 0, 1, false).
		AddItem(v.chatInput, 1, 0, true)

	v.tabPages = tview.NewPages()
	v.tabPages.AddPage(tabChat, chatPane, true, true)
	v.tabPages.AddPage(tabDocs, v.docsView, true, false)
	v.tabPages.AddPage(tabMap, v.mapView, true, false)

	v.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.summaryView, 9, 0, false).
		AddItem(v.tabBar, 1, 0, false).
		AddItem(v.tabPages, 0, 1, true)

	v.layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			ui.closeCaseView(v.id)
			ui.showHome()
			return nil
		}
		// Keep typing in the chat input unobstructed.
		if v.activeTab == tabChat && ui.app.GetFocus() == v.chatInput && event.Key() == tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'c':
			v.selectTab(tabChat)
			return nil
		case 'd':
			v.selectTab(tabDocs)
			return nil
		case 'm':
			v.selectTab(tabMap)
			return nil
		case 'r':
			if v.state == caseFailed {
				v.state = caseLoading
				v.renderSummary()
				go v.load()
				return nil
			}
		}
		switch event.Key() {
		case tcell.KeyF2:
			v.promptStatusChange("resolve")
			return nil
		case tcell.KeyF3:
			v.promptStatusChange("abort")
			return nil
		}
		return event
	})

	v.renderTabs()
	return v
}

func (v *caseView) updateStatusLine() {
	if v.statusControlsVisible() {
		v.ui.setStatus("c/d/m tabs | F2 resolve | F3 abort | Esc back")
	} else {
		v.ui.setStatus("c/d/m tabs | Esc back")
	}
}

// statusControlsVisible reports whether resolve/abort apply: only loaded,
// Open cases can change status.
func (v *caseView) statusControlsVisible() bool {
	return v.state == caseReady && v.data != nil && v.data.Meta.Status == api.StatusOpen
}

func (v *caseView) selectTab(tab string) {
	v.activeTab = tab
	v.renderTabs()
	v.tabPages.SwitchToPage(tab)
	if tab == tabChat {
		v.ui.app.SetFocus(v.chatInput)
	}
	if tab == tabMap {
		v.showMap()
	}
}

func (v *caseView) renderTabs() {
	theme := v.ui.theme
	var b strings.Builder
	for _, tab := range []string{tabChat, tabDocs, tabMap} {
		if tab == v.activeTab {
			fmt.Fprintf(&b, " [%s::b]%s[-:-:-] ", theme.TagAccent, tab)
		} else {
			fmt.Fprintf(&b, " [%s]%s[-] ", theme.TagMuted, tab)
		}
	}
	v.tabBar.SetText(b.String())
}

// load fetches the case payload. Failure keeps whatever rendered already
// and offers a retry.
func (v *caseView) load() {
	ctx, cancel := context.WithTimeout(v.ui.ctx, 30*time.Second)
	defer cancel()

	data, err := v.ui.client.CaseDetail(ctx, v.id)
	v.ui.app.QueueUpdateDraw(func() {
		if err != nil {
			v.ui.logger.Warnw("case detail fetch failed", "case_id", v.id, "error", err)
			v.state = caseFailed
			v.renderSummary()
			v.updateStatusLine()
			return
		}
		v.state = caseReady
		v.data = data
		v.renderSummary()
		v.renderDocuments()
		v.updateStatusLine()
		if !v.chatLoaded {
			v.chatLoaded = true
			v.loop = chat.NewLoop(v.id, v.ui.client, v.ui.cache, v.ui.logger)
			v.chatView.SetText(fmt.Sprintf(" [%s]loading conversation...[-]", v.ui.theme.TagMuted))
			// No sends until the history fetch settles.
			v.chatInput.SetDisabled(true)
			go func() {
				lctx, lcancel := context.WithTimeout(v.ui.ctx, 30*time.Second)
				defer lcancel()
				turns := v.loop.LoadHistory(lctx)
				v.ui.app.QueueUpdateDraw(func() {
					v.renderChat(turns)
					v.chatInput.SetDisabled(false)
				})
			}()
		}
	})
}

func (v *caseView) renderSummary() {
	theme := v.ui.theme
	switch v.state {
	case caseLoading:
		v.summaryView.SetText(fmt.Sprintf("\n [%s]Loading case %s...[-]", theme.TagMuted, v.id))
		return
	case caseFailed:
		v.summaryView.SetText(fmt.Sprintf("\n [%s]Could not load case %s.[-]\n\n [%s]Press r to retry, Esc to go back.[-]",
			theme.TagError, v.id, theme.TagMuted))
		return
	}

	meta := v.data.Meta
	analysis := v.data.Summary
	statusTag := theme.TagSuccess
	switch meta.Status {
	case api.StatusAborted:
		statusTag = theme.TagError
	case api.StatusResolved:
		statusTag = theme.TagAccent
	}

	var b strings.Builder
	fmt.Fprintf(&b, " [%s::b]%s[-:-:-]  [%s]%s[-]\n", theme.TagTextPrimary, meta.Title, statusTag, meta.Status)
	if analysis.CaseType != "" {
		fmt.Fprintf(&b, " [%s]%s[-]\n", theme.TagMuted, analysis.CaseType)
	}
	if analysis.Summary != "" {
		fmt.Fprintf(&b, "\n %s\n", analysis.Summary)
	}
	if len(analysis.Entities) > 0 {
		fmt.Fprintf(&b, "\n [%s]Parties:[-] ", theme.TagMuted)
		for i, e := range analysis.Entities {
			if i > 0 {
				b.WriteString(", ")
			}
			mark := theme.TagSuccess
			if !e.Valid {
				mark = theme.TagWarning
			}
			fmt.Fprintf(&b, "[%s]%s (%s)[-]", mark, e.Name, e.EntityType)
		}
		b.WriteString("\n")
	}
	if analysis.Remarks != "" {
		fmt.Fprintf(&b, " [%s]Remarks:[-] %s\n", theme.TagMuted, analysis.Remarks)
	}
	v.summaryView.SetText(b.String())
}

func (v *caseView) renderDocuments() {
	theme := v.ui.theme
	analysis := v.data.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "\n [%s]Main document[-]\n   %s\n", theme.TagAccent, analysis.Document)
	if len(analysis.SupportingDocuments) > 0 {
		fmt.Fprintf(&b, "\n [%s]Supporting documents[-]\n", theme.TagAccent)
		for _, doc := range analysis.SupportingDocuments {
			fmt.Fprintf(&b, "   %s\n", doc)
		}
	}
	if len(analysis.References) > 0 {
		fmt.Fprintf(&b, "\n [%s]References[-]\n", theme.TagAccent)
		for _, ref := range analysis.References {
			fmt.Fprintf(&b, "   %s\n", ref)
		}
	}
	if len(analysis.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n [%s]Recommendations[-]\n", theme.TagAccent)
		for _, rec := range analysis.Recommendations {
			fmt.Fprintf(&b, "   - %s\n", rec)
		}
	}
	v.docsView.SetText(b.String())
}

func (v *caseView) renderChat(turns []chat.Turn) {
	theme := v.ui.theme
	var b strings.Builder
	for _, t := range turns {
		if t.Type == chat.TurnQuery {
			fmt.Fprintf(&b, "\n [%s::b]you[-:-:-]  %s\n", theme.TagAccent, t.Content)
		} else {
			fmt.Fprintf(&b, "\n [%s::b]assistant[-:-:-]  %s\n", theme.TagSuccess, t.Content)
		}
	}
	v.chatView.SetText(b.String())
	v.chatView.ScrollToEnd()
}

func (v *caseView) sendChat() {
	if v.loop == nil || v.loop.InFlight() {
		return
	}
	text := strings.TrimSpace(v.chatInput.GetText())
	if text == "" {
		return
	}
	v.chatInput.SetText("")
	v.chatInput.SetDisabled(true)

	// Echo the query immediately; the loop's own append lands with the
	// response when the send settles.
	v.chatView.SetText(v.chatView.GetText(false) + fmt.Sprintf("\n [%s::b]you[-:-:-]  %s\n [%s]thinking...[-]\n",
		v.ui.theme.TagAccent, tview.Escape(text), v.ui.theme.TagMuted))
	v.chatView.ScrollToEnd()

	go func() {
		ctx, cancel := context.WithTimeout(v.ui.ctx, 2*time.Minute)
		defer cancel()
		_, err := v.loop.Send(ctx, text)
		turns := v.loop.Turns()
		v.ui.app.QueueUpdateDraw(func() {
			v.chatInput.SetDisabled(false)
			v.renderChat(turns)
			v.ui.app.SetFocus(v.chatInput)
			if err != nil {
				v.ui.notifier.Dispatch(notify.Error("Message failed to send"))
			}
		})
	}()
}

// showMap lazily builds the viewport, centering it on the first asset with
// coordinates.
func (v *caseView) showMap() {
	if v.viewport == nil {
		v.viewport = gis.NewViewport()
		if v.data != nil {
			if coords, ok := firstAssetCoordinates(v.data.Summary.Assets); ok {
				v.viewport.Recenter(coords)
			}
		}
	}
	v.renderMap()
}

func (v *caseView) renderMap() {
	theme := v.ui.theme
	var b strings.Builder
	center := v.viewport.Center()
	fmt.Fprintf(&b, "\n [%s]Center[-]  %.4f, %.4f   [%s]Zoom[-] %d\n", theme.TagAccent, center.Latitude, center.Longitude, theme.TagAccent, v.viewport.Zoom())
	if marker := v.viewport.Marker(); marker != nil {
		fmt.Fprintf(&b, " [%s]Marker[-]  %.4f, %.4f\n", theme.TagAccent, marker.Latitude, marker.Longitude)
	}
	if v.data != nil && len(v.data.Summary.Assets) > 0 {
		fmt.Fprintf(&b, "\n [%s]Assets[-]\n", theme.TagAccent)
		for _, a := range v.data.Summary.Assets {
			line := fmt.Sprintf("   %s (%s)", a.Name, a.AssetType)
			if a.Location != "" {
				line += " @ " + a.Location
			}
			if a.NetWorth > 0 {
				line += fmt.Sprintf(" [%s]$%.0f[-]", theme.TagSuccess, a.NetWorth)
			}
			b.WriteString(line + "\n")
		}
	}
	v.mapView.SetText(b.String())
}

// firstAssetCoordinates parses "lat,lon" from the first asset that carries
// coordinates.
func firstAssetCoordinates(assets []api.Asset) (api.Coordinates, bool) {
	for _, a := range assets {
		if a.Coordinates == "" {
			continue
		}
		var lat, lon float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(a.Coordinates, " ", ""), "%f,%f", &lat, &lon); err == nil {
			return api.Coordinates{Latitude: lat, Longitude: lon}, true
		}
	}
	return api.Coordinates{}, false
}

// promptStatusChange opens the remarks modal for a resolve or abort.
func (v *caseView) promptStatusChange(action string) {
	if !v.statusControlsVisible() {
		return
	}
	theme := v.ui.theme
	modal := "status:" + v.id

	form := tview.NewForm().
		AddTextArea("Remarks", "", 50, 4, 0, nil)
	title := " Resolve Case "
	if action == "abort" {
		title = " Abort Case "
	}
	form.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)
	form.SetBackgroundColor(theme.Surface)
	form.SetFieldBackgroundColor(theme.SelectionBg)

	dismiss := func() { v.ui.pages.RemovePage(modal) }
	form.AddButton("Confirm", func() {
		remarks := strings.TrimSpace(form.GetFormItem(0).(*tview.TextArea).GetText())
		dismiss()
		go v.changeStatus(action, remarks)
	})
	form.AddButton("Cancel", dismiss)

	v.ui.pages.AddPage(modal, center(form, 60, 12), true, true)
}

// changeStatus posts the action and merges the result into local state:
// the cached list, the audit log, and the other console instances.
func (v *caseView) changeStatus(action, remarks string) {
	ctx, cancel := context.WithTimeout(v.ui.ctx, 30*time.Second)
	defer cancel()

	change, err := v.ui.client.SetCaseStatus(ctx, v.id, action, remarks)
	if err != nil {
		v.ui.logger.Warnw("status change failed", "case_id", v.id, "action", action, "error", err)
		v.ui.notifier.Dispatch(notify.Error("Could not " + action + " case"))
		return
	}

	if v.ui.cache != nil {
		if err := v.ui.cache.UpdateCaseStatus(ctx, v.id, string(change.Status)); err != nil {
			v.ui.logger.Debugw("cached status update failed", "case_id", v.id, "error", err)
		}
		v.ui.cache.LogAction(ctx, store.AuditEntry{
			Action:  "case_" + action,
			CaseID:  v.id,
			Actor:   v.ui.profile.Username,
			Details: map[string]string{"remarks": remarks},
		})
	}
	busAction := bus.ActionResolved
	if action == "abort" {
		busAction = bus.ActionAborted
	}
	v.ui.eventBus.PublishCase(ctx, bus.CaseMessage{
		CaseID:    v.id,
		Action:    busAction,
		Status:    string(change.Status),
		Timestamp: time.Now().Unix(),
	})

	v.ui.app.QueueUpdateDraw(func() {
		if v.data != nil {
			v.data.Meta.Status = change.Status
			if change.Remarks != "" {
				v.data.Summary.Remarks = change.Remarks
			} else if remarks != "" {
				v.data.Summary.Remarks = remarks
			}
			v.renderSummary()
		}
		for i := range v.ui.cases {
			if v.ui.cases[i].CaseID == v.id {
				v.ui.cases[i].Status = change.Status
			}
		}
		v.updateStatusLine()
		v.ui.notifier.Dispatch(notify.Success("Case " + strings.ToLower(string(change.Status))))
	})
}
