package tui

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/rivo/tview"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/config"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/monitor"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/settings"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/supervisor"
)

const (
	labelServerBinary = "llama-server Binary"
	labelHost         = "Host"
	labelPort         = "Port"
	labelEndpoint     = "OpenAI Base URL"
	labelCtxSize      = "Context Size"
	labelThreads      = "Threads"
)

// ServeOptions carries the initial field values of the server
// front-end.
type ServeOptions struct {
	Defaults config.Defaults
	Binary   string
	Model    string
	Host     string
	Port     int
}

// serverApp is the single mutable state struct of the server
// front-end. The supervisor worker and the poller only reach it
// through QueueUpdateDraw.
type serverApp struct {
	app        *tview.Application
	pages      *tview.Pages
	form       *tview.Form
	output     *tview.TextView
	monitorBar *tview.TextView
	status     *tview.TextView

	sup    *supervisor.Supervisor
	poller *monitor.Poller

	// baseURL feeds the poller, which runs off the UI goroutine.
	// It is refreshed from the host/port fields on every change.
	baseURL atomic.Value

	statusLabel string
	modelLabel  string
	stopping    bool
}

// RunServer runs the server front-end until the user quits. The status
// poll runs for the whole application lifetime, whether or not a
// managed process exists.
func RunServer(opts ServeOptions) error {
	a := newServerApp(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for ev := range a.sup.Events() {
			ev := ev
			a.app.QueueUpdateDraw(func() { a.apply(ev) })
		}
	}()

	go a.poller.Run(ctx, opts.Defaults.PollInterval, func(snap monitor.Snapshot) {
		a.app.QueueUpdateDraw(func() { a.applySnapshot(snap) })
	})

	return a.app.SetRoot(a.pages, true).EnableMouse(true).Run()
}

func newServerApp(opts ServeOptions) *serverApp {
	a := &serverApp{
		app:         tview.NewApplication(),
		sup:         supervisor.New(),
		statusLabel: "Stopped",
		modelLabel:  monitor.Unknown,
	}
	d := opts.Defaults
	a.sup.Grace = d.StopGrace

	a.poller = monitor.New(func() string {
		url, _ := a.baseURL.Load().(string)
		return url
	})
	a.poller.Client.Timeout = d.PollTimeout

	host := opts.Host
	if host == "" {
		host = d.Host
	}
	port := opts.Port
	if port == 0 {
		port = d.Port
	}

	a.form = tview.NewForm().
		AddInputField(labelServerBinary, opts.Binary, 0, nil, nil).
		AddInputField(labelModel, opts.Model, 0, nil, nil).
		AddInputField(labelHost, host, 20, nil, func(string) { a.updateEndpoint() }).
		AddInputField(labelPort, strconv.Itoa(port), 10, tview.InputFieldInteger, func(string) { a.updateEndpoint() }).
		AddTextView(labelEndpoint, "", 0, 1, false, false).
		AddInputField(labelTemperature, formatFloat(d.Temperature), 10, tview.InputFieldFloat, nil).
		AddInputField(labelCtxSize, strconv.Itoa(d.CtxSize), 10, tview.InputFieldInteger, nil).
		AddInputField(labelThreads, strconv.Itoa(d.Threads), 10, tview.InputFieldInteger, nil).
		AddButton("Start Server", a.onStart).
		AddButton("Stop Server", a.onStop).
		AddButton("Restart with Settings", a.onApply).
		AddButton("Refresh Now", a.onRefresh).
		AddButton("Clear Output", func() { a.output.SetText("") }).
		AddButton("Quit", a.app.Stop)
	a.form.SetBorder(true).SetTitle(" llama.cpp Server GUI ")

	a.monitorBar = tview.NewTextView().SetDynamicColors(true)

	a.output = tview.NewTextView().SetScrollable(true).SetWordWrap(true)
	a.output.SetBorder(true).SetTitle(" Server Output ")

	a.status = tview.NewTextView()
	a.status.SetText("Ready to start server.")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.form, 0, 2, true).
		AddItem(a.monitorBar, 1, 0, false).
		AddItem(a.output, 0, 3, false).
		AddItem(a.status, 1, 0, false)

	a.pages = tview.NewPages().AddPage("main", layout, true, true)
	bindKeys(a.app, a.form, a.output)

	a.updateEndpoint()
	a.renderMonitor()
	return a
}

// updateEndpoint re-derives the OpenAI base URL from the host/port
// fields and redirects the poller.
func (a *serverApp) updateEndpoint() {
	s := settings.ServerSettings{Host: fieldText(a.form, labelHost)}
	s.Port, _ = strconv.Atoi(fieldText(a.form, labelPort))

	a.form.GetFormItemByLabel(labelEndpoint).(*tview.TextView).SetText(s.EndpointURL())
	a.baseURL.Store(s.BaseURL())
}

func (a *serverApp) collect() (settings.ServerSettings, error) {
	var s settings.ServerSettings
	var err error

	s.Binary = fieldText(a.form, labelServerBinary)
	s.Model = fieldText(a.form, labelModel)
	s.Host = fieldText(a.form, labelHost)

	if s.Port, err = fieldInt(a.form, labelPort); err != nil {
		return s, err
	}
	if s.Temperature, err = fieldFloat(a.form, labelTemperature); err != nil {
		return s, err
	}
	if s.CtxSize, err = fieldInt(a.form, labelCtxSize); err != nil {
		return s, err
	}
	if s.Threads, err = fieldInt(a.form, labelThreads); err != nil {
		return s, err
	}
	return s, nil
}

func (a *serverApp) onStart() {
	if a.sup.State() != supervisor.Stopped {
		a.showError("Server is already running.")
		return
	}

	s, err := a.collect()
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		a.showError(err.Error())
		return
	}

	a.launch(s)
}

// launch spawns the server from the given settings. The argument
// vector is derived here, at launch time.
func (a *serverApp) launch(s settings.ServerSettings) {
	args := s.Args()
	a.output.SetText("")
	appendOutput(a.output, commandLine(s.Binary, args))
	appendOutput(a.output, "")
	a.stopping = false
	a.setStatusLabel("Starting...")
	a.status.SetText("Launching llama.cpp server...")

	if err := a.sup.Start(s.Binary, args...); err != nil {
		a.showError("Failed to start server: " + err.Error())
		a.status.SetText("Error: " + err.Error())
		a.setStatusLabel("Stopped")
	}
}

func (a *serverApp) onStop() {
	if a.sup.State() != supervisor.Running {
		return
	}
	a.stopping = true
	go a.sup.Stop()
}

// onApply restarts the server with the current settings, or starts it
// when nothing is running.
func (a *serverApp) onApply() {
	s, err := a.collect()
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		a.showError(err.Error())
		return
	}

	if a.sup.State() == supervisor.Stopped {
		a.launch(s)
		return
	}

	confirm(a.app, a.pages, a.form, "Apply settings by restarting the server now?", func() {
		a.restart(s)
	})
}

// restart defers the new start until the old process has fully exited
// so the listening port cannot be double-bound.
func (a *serverApp) restart(s settings.ServerSettings) {
	a.stopping = true
	args := s.Args()
	go func() {
		if err := a.sup.Restart(s.Binary, args...); err != nil {
			a.app.QueueUpdateDraw(func() {
				a.showError("Failed to start server: " + err.Error())
				a.status.SetText("Error: " + err.Error())
			})
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.output.SetText("")
			appendOutput(a.output, commandLine(s.Binary, args))
			appendOutput(a.output, "")
			a.status.SetText("Launching llama.cpp server...")
		})
	}()
}

func (a *serverApp) onRefresh() {
	go func() {
		snap := a.poller.Check(context.Background())
		a.app.QueueUpdateDraw(func() { a.applySnapshot(snap) })
	}()
}

// apply folds one supervisor event into the UI.
func (a *serverApp) apply(ev supervisor.Event) {
	switch ev.Kind {
	case supervisor.EventStarted:
		a.setStatusLabel("Running")
	case supervisor.EventLine:
		appendOutput(a.output, ev.Line)
	case supervisor.EventExited:
		appendOutput(a.output, "")
		switch {
		case a.stopping:
			appendOutput(a.output, "=== Server stopped by user ===")
			a.status.SetText("Server stopped by user.")
		case ev.Code == 0:
			a.status.SetText("Server exited normally.")
		default:
			a.status.SetText("Server exited with code " + strconv.Itoa(ev.Code) + ".")
		}
		a.stopping = false
		a.setStatusLabel("Stopped")
	}
}

// applySnapshot folds one poll result into the monitoring line. Like
// the status poll itself, it runs whether or not this application owns
// the server process.
func (a *serverApp) applySnapshot(snap monitor.Snapshot) {
	if snap.Online {
		a.statusLabel = "Online"
	} else {
		a.statusLabel = "Offline"
	}
	a.modelLabel = snap.Model
	a.renderMonitor()
}

func (a *serverApp) setStatusLabel(label string) {
	a.statusLabel = label
	a.renderMonitor()
}

func (a *serverApp) renderMonitor() {
	a.monitorBar.SetText(" Server Status: [::b]" + tview.Escape(a.statusLabel) +
		"[-:-:-]    Loaded Model: [::b]" + tview.Escape(a.modelLabel) + "[-:-:-]")
}

func (a *serverApp) showError(text string) {
	showError(a.app, a.pages, a.form, text)
}
