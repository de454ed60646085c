// Package ui implements the terminal portal: auth screens, the case list
// home, per-case detail views, and the one-shot GIS analysis screen.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/bus"
	"github.com/inheir-ai/inheir-console/internal/docs"
	"github.com/inheir-ai/inheir-console/internal/gis"
	"github.com/inheir-ai/inheir-console/internal/notify"
	"github.com/inheir-ai/inheir-console/internal/session"
	"github.com/inheir-ai/inheir-console/internal/store"
)

// Page names for the top-level page stack.
const (
	pageAuth = "auth"
	pageHome = "home"
	pageCase = "case"
	pageGIS  = "gis"
)

// Options carries the collaborators the UI needs. Client and Session are
// required; the rest degrade gracefully when nil.
type Options struct {
	Client  *api.Client
	Session session.Store
	Cache   *store.Store
	Bus     bus.Bus
	Watcher *docs.Watcher
	Logger  *zap.SugaredLogger
	Theme   string
}

// UI represents the terminal user interface.
type UI struct {
	app      *tview.Application
	client   *api.Client
	session  session.Store
	cache    *store.Store
	eventBus bus.Bus
	watcher  *docs.Watcher
	analyzer *gis.Analyzer
	toaster  *Toaster
	notifier notify.Notifier
	logger   *zap.SugaredLogger

	// Layout
	pages     *tview.Pages
	header    *tview.TextView
	toastView *tview.TextView
	statusBar *tview.TextView
	root      *tview.Flex

	theme        Theme
	themeName    string
	hasTrueColor bool

	// Home state
	cases     []api.CaseSummary
	statusTab api.CaseStatus
	caseList  *tview.List
	tabBar    *tview.TextView
	isAdmin   bool

	// Auth state
	auth *authScreen

	// Open case views keyed by case id. A view's map viewport lives as
	// long as the view does.
	caseViews  map[string]*caseView
	activeCase string

	// GIS screen
	gisView *gisScreen

	// Create-case dialog state: set while the dialog is open so watcher
	// updates can rebuild the document picker in place.
	docPicker  *tview.DropDown
	docRefresh func(files []string)

	profile session.Profile

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewUI assembles the terminal user interface.
func NewUI(ctx context.Context, opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	uiCtx, cancel := context.WithCancel(ctx)
	trueColor := detectTrueColor()

	ui := &UI{
		app:          tview.NewApplication(),
		client:       opts.Client,
		session:      opts.Session,
		cache:        opts.Cache,
		eventBus:     opts.Bus,
		watcher:      opts.Watcher,
		logger:       logger,
		themeName:    opts.Theme,
		theme:        themeFor(opts.Theme, trueColor),
		hasTrueColor: trueColor,
		statusTab:    api.StatusOpen,
		caseViews:    make(map[string]*caseView),
		ctx:          uiCtx,
		cancel:       cancel,
	}
	if ui.eventBus == nil {
		ui.eventBus = bus.NewNullBus(logger)
	}
	ui.analyzer = gis.NewAnalyzer(opts.Client, logger)
	if ui.watcher != nil {
		ui.watcher.OnChange(func(files []string) {
			ui.app.QueueUpdateDraw(func() {
				if ui.docRefresh != nil {
					ui.docRefresh(files)
				}
			})
		})
	}

	ui.setupLayout()
	ui.setupKeybindings()
	return ui
}

// Notifier exposes the notification surface for collaborators that report
// outcomes.
func (ui *UI) Notifier() notify.Notifier { return ui.notifier }

// Start runs the application. The route guard sends signed-out users to
// the auth screen and everyone else to home; direct navigation can never
// bypass it because every page switch funnels through showHome/showAuth.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Infow("starting portal UI")

	if ui.session.SignedIn(ui.ctx) {
		ui.profile = ui.session.Profile(ui.ctx)
		ui.showHome()
	} else {
		ui.showAuth()
	}

	if ui.watcher != nil {
		go func() {
			if err := ui.watcher.Run(ui.ctx); err != nil {
				ui.logger.Warnw("document watcher stopped", "error", err)
			}
		}()
	}
	go ui.consumeBus()

	go func() {
		select {
		case <-ctx.Done():
			ui.logger.Infow("external context cancelled, stopping UI")
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()

	ui.running = true
	err := ui.app.Run()
	ui.running = false
	return err
}

// Stop stops the TUI application.
func (ui *UI) Stop() {
	ui.cancel()
	ui.app.Stop()
}

func (ui *UI) setupLayout() {
	ui.pages = tview.NewPages()

	ui.header = tview.NewTextView().SetDynamicColors(true)
	ui.header.SetBackgroundColor(ui.theme.Surface)

	ui.toastView = tview.NewTextView().SetDynamicColors(true)
	ui.toastView.SetBackgroundColor(ui.theme.Bg)
	ui.toaster = NewToaster(ui.app, ui.toastView, ui.theme)
	ui.notifier = ui.toaster

	ui.statusBar = tview.NewTextView().SetDynamicColors(true)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)
	ui.setStatus("q quit | t theme")

	ui.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.header, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.toastView, 1, 0, false).
		AddItem(ui.statusBar, 1, 0, false)
	ui.root.SetBackgroundColor(ui.theme.Bg)

	ui.app.SetRoot(ui.root, true)
	ui.refreshHeader()
}

func (ui *UI) setupKeybindings() {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Plain runes must reach input fields untouched.
		if event.Key() == tcell.KeyCtrlT {
			ui.toggleTheme()
			return nil
		}
		if event.Key() == tcell.KeyCtrlQ {
			ui.Stop()
			return nil
		}
		if event.Key() == tcell.KeyCtrlS && ui.auth != nil {
			if name, _ := ui.pages.GetFrontPage(); name == pageAuth {
				ui.auth.toggleMode()
				return nil
			}
		}
		return event
	})
}

func (ui *UI) toggleTheme() {
	if ui.themeName == "light" {
		ui.themeName = "dark"
	} else {
		ui.themeName = "light"
	}
	ui.theme = themeFor(ui.themeName, ui.hasTrueColor)
	ui.toaster.theme = ui.theme
	ui.header.SetBackgroundColor(ui.theme.Surface)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)
	ui.toastView.SetBackgroundColor(ui.theme.Bg)
	ui.root.SetBackgroundColor(ui.theme.Bg)
	ui.refreshHeader()
}

func (ui *UI) refreshHeader() {
	who := ""
	if ui.profile.Username != "" {
		who = fmt.Sprintf("  [%s]%s[-]", ui.theme.TagMuted, ui.profile.Username)
	}
	ui.header.SetText(fmt.Sprintf(" [%s::b]Inheir.ai Console[-:-:-]%s", ui.theme.TagAccent, who))
}

func (ui *UI) setStatus(format string, args ...interface{}) {
	ui.statusBar.SetText(fmt.Sprintf(" [%s]%s[-]", ui.theme.TagMuted, fmt.Sprintf(format, args...)))
}

// consumeBus folds cross-instance session and case events back into this
// instance's state.
func (ui *UI) consumeBus() {
	consumer := "console-" + fmt.Sprintf("%d", time.Now().UnixNano())

	go func() {
		err := ui.eventBus.ReadSessionStream(ui.ctx, "console", consumer, func(ctx context.Context, msg bus.SessionMessage) error {
			if msg.Action != bus.ActionSignedOut || msg.Username != ui.profile.Username {
				return nil
			}
			ui.logger.Infow("session ended elsewhere", "username", msg.Username)
			ui.app.QueueUpdateDraw(func() {
				ui.handleSignedOut()
			})
			return nil
		})
		if err != nil && ui.ctx.Err() == nil {
			ui.logger.Debugw("session stream closed", "error", err)
		}
	}()

	err := ui.eventBus.ReadCaseStream(ui.ctx, "console", consumer, func(ctx context.Context, msg bus.CaseMessage) error {
		ui.logger.Debugw("case update from bus", "case_id", msg.CaseID, "action", msg.Action)
		ui.app.QueueUpdateDraw(func() {
			if ui.pages.HasPage(pageHome) {
				go ui.refreshCases()
			}
		})
		return nil
	})
	if err != nil && ui.ctx.Err() == nil {
		ui.logger.Debugw("case stream closed", "error", err)
	}
}

// handleSignedOut tears the workspace down and routes back to auth. Runs on
// the event loop.
func (ui *UI) handleSignedOut() {
	for id := range ui.caseViews {
		ui.closeCaseView(id)
	}
	ui.profile = session.Profile{}
	ui.cases = nil
	ui.isAdmin = false
	ui.refreshHeader()
	ui.showAuth()
}

func (ui *UI) signOut() {
	username := ui.profile.Username
	go func() {
		ctx, cancel := context.WithTimeout(ui.ctx, 10*time.Second)
		defer cancel()
		if err := ui.client.SignOut(ctx); err != nil {
			ui.logger.Warnw("backend sign-out failed", "error", err)
		}
		if err := ui.session.SignOut(ctx); err != nil {
			ui.logger.Warnw("local session clear failed", "error", err)
		}
		ui.eventBus.PublishSession(ctx, bus.SessionMessage{
			Username:  username,
			Action:    bus.ActionSignedOut,
			Timestamp: time.Now().Unix(),
		})
		ui.app.QueueUpdateDraw(func() {
			ui.notifier.Dispatch(notify.Info("Signed out", ""))
			ui.handleSignedOut()
		})
	}()
}
