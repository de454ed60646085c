package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/inheir-ai/inheir-console/internal/gis"
	"github.com/inheir-ai/inheir-console/internal/notify"
)

// gisScreen is the one-shot address analysis page: an address input, the
// latest risk metrics, and a small map readout.
type gisScreen struct {
	ui *UI

	layout   *tview.Flex
	input    *tview.InputField
	results  *tview.TextView
	mapView  *tview.TextView
	viewport *gis.Viewport
}

// showGIS routes to the analysis screen, building it on first use.
func (ui *UI) showGIS() {
	if ui.gisView == nil {
		ui.gisView = newGISScreen(ui)
		ui.pages.AddPage(pageGIS, ui.gisView.layout, true, false)
	}
	ui.pages.SwitchToPage(pageGIS)
	ui.app.SetFocus(ui.gisView.input)
	ui.setStatus("Enter analyze | Esc back")
}

func newGISScreen(ui *UI) *gisScreen {
	theme := ui.theme
	g := &gisScreen{ui: ui, viewport: gis.NewViewport()}

	g.input = tview.NewInputField().SetLabel(" Address: ").SetFieldWidth(0)
	g.input.SetFieldBackgroundColor(theme.SelectionBg)
	g.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			g.submit()
		}
	})

	g.results = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	g.results.SetBorder(true).SetTitle(" Location Risk ").SetTitleAlign(tview.AlignLeft)
	g.results.SetBackgroundColor(theme.Surface)
	g.results.SetText(fmt.Sprintf("\n [%s]Enter an address to analyze.[-]", theme.TagMuted))

	g.mapView = tview.NewTextView().SetDynamicColors(true)
	g.mapView.SetBorder(true).SetTitle(" Map ").SetTitleAlign(tview.AlignLeft)
	g.mapView.SetBackgroundColor(theme.Surface)

	g.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(g.input, 1, 0, true).
		AddItem(g.results, 0, 2, false).
		AddItem(g.mapView, 7, 0, false)
	g.layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			ui.showHome()
			return nil
		}
		return event
	})

	g.renderMap()
	return g
}

// submit kicks off an analysis. The input stays disabled while one is in
// flight; a newer submission supersedes a slower older one.
func (g *gisScreen) submit() {
	address := strings.TrimSpace(g.input.GetText())
	if address == "" || g.ui.analyzer.InFlight() {
		return
	}
	theme := g.ui.theme
	g.input.SetDisabled(true)
	g.results.SetText(fmt.Sprintf("\n [%s]Analyzing %s...[-]", theme.TagMuted, address))

	g.ui.analyzer.Analyze(g.ui.ctx, address, func(r gis.Result) {
		if r.Err != nil {
			g.ui.notifier.Dispatch(notify.Error("Address analysis failed"))
		}
		g.ui.app.QueueUpdateDraw(func() {
			g.input.SetDisabled(false)
			if r.Err != nil {
				g.results.SetText(fmt.Sprintf("\n [%s]Analysis failed for %s.[-]\n\n [%s]Check the address and try again.[-]",
					theme.TagError, r.Address, theme.TagMuted))
				return
			}
			g.renderResult(r)
		})
	})
}

func (g *gisScreen) renderResult(r gis.Result) {
	theme := g.ui.theme
	res := r.Result

	var b strings.Builder
	fmt.Fprintf(&b, "\n [%s::b]%s[-:-:-]\n\n", theme.TagTextPrimary, res.Address)
	fmt.Fprintf(&b, " [%s]Risk level[-]   [%s::b]%s[-:-:-]\n", theme.TagMuted, riskTag(theme, res.RiskLevel), res.RiskLevel)
	fmt.Fprintf(&b, " [%s]Risk score[-]   %.1f\n", theme.TagMuted, res.RiskScore)
	if res.FloodRisk != "" {
		fmt.Fprintf(&b, " [%s]Flood risk[-]   [%s]%s[-]\n", theme.TagMuted, riskTag(theme, res.FloodRisk), res.FloodRisk)
	}
	if res.Summary != "" {
		fmt.Fprintf(&b, "\n %s\n", res.Summary)
	}
	g.results.SetText(b.String())

	if res.Coordinates.Latitude != 0 || res.Coordinates.Longitude != 0 {
		g.viewport.Recenter(res.Coordinates)
	}
	g.renderMap()
}

func (g *gisScreen) renderMap() {
	theme := g.ui.theme
	center := g.viewport.Center()
	var b strings.Builder
	fmt.Fprintf(&b, "\n [%s]Center[-]  %.4f, %.4f   [%s]Zoom[-] %d\n", theme.TagAccent, center.Latitude, center.Longitude, theme.TagAccent, g.viewport.Zoom())
	if marker := g.viewport.Marker(); marker != nil {
		fmt.Fprintf(&b, " [%s]Marker[-]  %.4f, %.4f\n", theme.TagAccent, marker.Latitude, marker.Longitude)
	} else {
		fmt.Fprintf(&b, " [%s]No marker placed yet.[-]\n", theme.TagMuted)
	}
	g.mapView.SetText(b.String())
}
