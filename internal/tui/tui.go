// Package tui implements the two terminal front-ends: the inference
// runner and the server controller.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const dialogPage = "dialog"

// showError raises a blocking error dialog over the page stack.
func showError(app *tview.Application, pages *tview.Pages, focus tview.Primitive, text string) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			pages.RemovePage(dialogPage)
			app.SetFocus(focus)
		})
	pages.AddPage(dialogPage, modal, true, true)
}

// confirm raises a Yes/No dialog and invokes onYes when confirmed.
func confirm(app *tview.Application, pages *tview.Pages, focus tview.Primitive, text string, onYes func()) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			pages.RemovePage(dialogPage)
			app.SetFocus(focus)
			if label == "Yes" {
				onYes()
			}
		})
	pages.AddPage(dialogPage, modal, true, true)
}

// bindKeys routes PgUp/PgDn to the output view from anywhere and lets
// Tab return focus to the form after scrolling. Tab inside the form
// keeps its usual field-cycling behavior.
func bindKeys(app *tview.Application, form *tview.Form, output *tview.TextView) {
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyPgUp, tcell.KeyPgDn:
			app.SetFocus(output)
		case tcell.KeyTab:
			if output.HasFocus() {
				app.SetFocus(form)
				return nil
			}
		}
		return event
	})
}

// appendOutput adds one line to an output view and keeps it pinned to
// the bottom.
func appendOutput(view *tview.TextView, line string) {
	fmt.Fprintln(view, tview.Escape(line))
	view.ScrollToEnd()
}

// commandLine renders the launch echo written at the top of the output
// view, mirroring the command actually spawned.
func commandLine(binary string, args []string) string {
	return "Command: " + binary + " " + strings.Join(args, " ")
}

func fieldText(form *tview.Form, label string) string {
	return strings.TrimSpace(form.GetFormItemByLabel(label).(*tview.InputField).GetText())
}

func fieldInt(form *tview.Form, label string) (int, error) {
	v, err := strconv.Atoi(fieldText(form, label))
	if err != nil {
		return 0, fmt.Errorf("Please enter a valid number for %s.", label)
	}
	return v, nil
}

func fieldFloat(form *tview.Form, label string) (float64, error) {
	v, err := strconv.ParseFloat(fieldText(form, label), 64)
	if err != nil {
		return 0, fmt.Errorf("Please enter a valid number for %s.", label)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
