package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/williamokano/docdeploy/pkg/mirror"
	"github.com/williamokano/docdeploy/pkg/report"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func statusMark(s report.Status) string {
	switch s {
	case report.StatusOK:
		return green("✓")
	case report.StatusWarning:
		return yellow("⚠")
	case report.StatusSkipped:
		return yellow("-")
	default:
		return red("✗")
	}
}

func printStep(w io.Writer, s report.Step) {
	line := fmt.Sprintf("  %s %-14s %s", statusMark(s.Status), s.Name, s.Status)
	if s.Err != nil {
		line += ": " + s.Err.Error()
	} else if s.Detail != "" && s.Status != report.StatusOK {
		line += ": " + s.Detail
	}
	fmt.Fprintln(w, line)
}

func printReport(w io.Writer, r *report.Report) {
	fmt.Fprintf(w, "\n%s version=%s alias=%q\n", bold("Deploy summary:"), r.Version, r.Alias)
	for _, s := range r.Steps {
		printStep(w, s)
	}
	fmt.Fprintln(w)
}

func printMirrorSummaries(w io.Writer, summaries []mirror.Summary) {
	fmt.Fprintf(w, "\n%s\n", bold("Mirror summary:"))
	for _, s := range summaries {
		mark := green("✓")
		if !s.OK() {
			mark = red("✗")
		}
		fmt.Fprintf(w, "  %s %-16s %-10s uploaded=%d skipped=%d deleted=%d failed=%d\n",
			mark, s.Destination, s.Type, s.Uploaded, s.Skipped, s.Deleted, s.Failed)
		for _, err := range s.Errors {
			fmt.Fprintf(w, "      - %s\n", err)
		}
	}
	fmt.Fprintln(w)
}
