package tui

import (
	"strconv"

	"github.com/rivo/tview"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/config"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/settings"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/supervisor"
)

const (
	labelBinary      = "llama-cli Binary"
	labelModel       = "Model File"
	labelMaxTokens   = "Max Tokens"
	labelTemperature = "Temperature"
	labelTopP        = "Top-p"
	labelTopK        = "Top-k"
	labelPrompt      = "Prompt"
)

// RunOptions carries the initial field values of the inference
// front-end. Binary is normally pre-filled by the locator.
type RunOptions struct {
	Defaults config.Defaults
	Binary   string
	Model    string
}

// runApp is the single mutable state struct of the inference
// front-end. Everything it owns is touched only on the UI goroutine;
// supervisor observations arrive via QueueUpdateDraw.
type runApp struct {
	app    *tview.Application
	pages  *tview.Pages
	form   *tview.Form
	output *tview.TextView
	status *tview.TextView

	sup      *supervisor.Supervisor
	stopping bool
}

// RunInference runs the inference front-end until the user quits.
func RunInference(opts RunOptions) error {
	a := newRunApp(opts)

	go func() {
		for ev := range a.sup.Events() {
			ev := ev
			a.app.QueueUpdateDraw(func() { a.apply(ev) })
		}
	}()

	return a.app.SetRoot(a.pages, true).EnableMouse(true).Run()
}

func newRunApp(opts RunOptions) *runApp {
	a := &runApp{
		app: tview.NewApplication(),
		sup: supervisor.New(),
	}
	a.sup.Grace = opts.Defaults.StopGrace
	d := opts.Defaults

	a.form = tview.NewForm().
		AddInputField(labelBinary, opts.Binary, 0, nil, nil).
		AddInputField(labelModel, opts.Model, 0, nil, nil).
		AddInputField(labelMaxTokens, strconv.Itoa(d.MaxTokens), 10, tview.InputFieldInteger, nil).
		AddInputField(labelTemperature, formatFloat(d.Temperature), 10, tview.InputFieldFloat, nil).
		AddInputField(labelTopP, formatFloat(d.TopP), 10, tview.InputFieldFloat, nil).
		AddInputField(labelTopK, strconv.Itoa(d.TopK), 10, tview.InputFieldInteger, nil).
		AddTextArea(labelPrompt, "", 0, 4, 0, nil).
		AddButton("Run Inference", a.onRun).
		AddButton("Stop", a.onStop).
		AddButton("Clear Output", a.onClear).
		AddButton("Quit", a.app.Stop)
	a.form.SetBorder(true).SetTitle(" llama.cpp GUI ")

	a.output = tview.NewTextView().SetScrollable(true).SetWordWrap(true)
	a.output.SetBorder(true).SetTitle(" Output ")

	a.status = tview.NewTextView()
	a.status.SetText("Ready")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.form, 0, 2, true).
		AddItem(a.output, 0, 3, false).
		AddItem(a.status, 1, 0, false)

	a.pages = tview.NewPages().AddPage("main", layout, true, true)
	bindKeys(a.app, a.form, a.output)
	return a
}

// collect reads the current field values. Field reads happen at launch
// time so the argument vector always reflects what is on screen.
func (a *runApp) collect() (settings.RunSettings, error) {
	var s settings.RunSettings
	var err error

	s.Binary = fieldText(a.form, labelBinary)
	s.Model = fieldText(a.form, labelModel)
	s.Prompt = a.form.GetFormItemByLabel(labelPrompt).(*tview.TextArea).GetText()

	if s.MaxTokens, err = fieldInt(a.form, labelMaxTokens); err != nil {
		return s, err
	}
	if s.Temperature, err = fieldFloat(a.form, labelTemperature); err != nil {
		return s, err
	}
	if s.TopP, err = fieldFloat(a.form, labelTopP); err != nil {
		return s, err
	}
	if s.TopK, err = fieldInt(a.form, labelTopK); err != nil {
		return s, err
	}
	return s, nil
}

func (a *runApp) onRun() {
	if a.sup.State() != supervisor.Stopped {
		a.showError("Inference is already running.")
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

	args := s.Args()
	a.output.SetText("")
	appendOutput(a.output, commandLine(s.Binary, args))
	appendOutput(a.output, "")
	a.stopping = false

	if err := a.sup.Start(s.Binary, args...); err != nil {
		a.showError("Failed to run inference: " + err.Error())
		a.status.SetText("Error: " + err.Error())
		return
	}
	a.status.SetText("Running inference...")
}

func (a *runApp) onStop() {
	if a.sup.State() != supervisor.Running {
		return
	}
	a.stopping = true
	// Stop blocks up to the grace period; keep the UI responsive.
	go a.sup.Stop()
}

func (a *runApp) onClear() {
	a.output.SetText("")
}

// apply folds one supervisor event into the UI.
func (a *runApp) apply(ev supervisor.Event) {
	switch ev.Kind {
	case supervisor.EventStarted:
		a.status.SetText("Running inference...")
	case supervisor.EventLine:
		appendOutput(a.output, ev.Line)
	case supervisor.EventExited:
		appendOutput(a.output, "")
		switch {
		case a.stopping:
			appendOutput(a.output, "=== Inference stopped by user ===")
			a.status.SetText("Inference stopped by user")
		case ev.Code == 0:
			appendOutput(a.output, "=== Inference completed successfully ===")
			a.status.SetText("Inference completed successfully")
		default:
			appendOutput(a.output, "=== Inference failed with exit code "+strconv.Itoa(ev.Code)+" ===")
			a.status.SetText("Inference failed with code " + strconv.Itoa(ev.Code))
		}
		a.stopping = false
	}
}

func (a *runApp) showError(text string) {
	showError(a.app, a.pages, a.form, text)
}
