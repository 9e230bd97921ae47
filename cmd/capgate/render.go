// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/capgate/internal/descriptor"
	"github.com/invowk/capgate/internal/discovery"
	"github.com/invowk/capgate/internal/issue"
	"github.com/invowk/capgate/internal/rules"
	"github.com/invowk/capgate/pkg/types"
)

// fail renders err on stderr, followed by its issue page when it links one,
// and returns an ExitError so fang does not print it a second time.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool, style string) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	if ae, ok := issue.AsActionable(err); ok {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+ae.Format(verbose))
		if page := ae.Page(); page != nil {
			if rendered, renderErr := page.Render(style); renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	} else {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+err.Error())
	}
	return &ExitError{Code: types.ExitFailure, Err: err}
}

// renderReports writes the styled text rendering: one block per module with
// the capability decisions followed by the descriptor itself.
func renderReports(w io.Writer, reports []*rules.Report) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, TitleStyle.Render(string(r.Module))+" "+SubtitleStyle.Render("("+string(r.Target)+")"))
		for _, o := range r.Outcomes {
			fmt.Fprintln(w, "  "+outcomeLine(o, r))
		}
		if r.Fallback != nil {
			fmt.Fprintf(w, "  %s fallback %s\n", iconArrow, KeyStyle.Render(r.Fallback.Path.String()))
		}
		fmt.Fprintln(w)
		if err := descriptor.Encode(w, descriptor.FormatText, descriptor.Document{
			Modules: []descriptor.Output{r.Descriptor.Snapshot()},
		}); err != nil {
			return err
		}
	}
	return nil
}

func outcomeLine(o rules.Outcome, r *rules.Report) string {
	c := o.Capability
	flag, _ := r.Descriptor.Flag(c.Flag)
	def := flag.Definition()

	switch {
	case o.Skipped:
		return fmt.Sprintf("%s %s %s %s", iconSkipped, c.Label(), def,
			SubtitleStyle.Render("(not probed on "+string(r.Target)+")"))
	case o.Found:
		m, _ := o.Match()
		return fmt.Sprintf("%s %s %s %s via %s %s", iconFound, c.Label(), SuccessStyle.Render(def),
			o.Alias.Name, KeyStyle.Render(string(m.Strategy)), SubtitleStyle.Render(m.Path.String()))
	default:
		names := make([]string, 0, len(c.Aliases))
		for _, a := range c.Aliases {
			names = append(names, string(a.Name))
		}
		return fmt.Sprintf("%s %s %s %s", iconMissing, c.Label(), WarningStyle.Render(def),
			SubtitleStyle.Render("(none of "+strings.Join(names, ", ")+" found)"))
	}
}

// renderDiagnostics writes recoverable probe problems to stderr.
func renderDiagnostics(w io.Writer, diags []discovery.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s %s\n", iconWarning, WarningStyle.Render(d.String()))
	}
}
