package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/matchyard/matchyard/internal/dashboard"
	"github.com/matchyard/matchyard/internal/notify"
	"github.com/matchyard/matchyard/internal/stats"
	"golang.org/x/term"
)

// ANSI escapes used when stdout is a terminal.
const (
	ansiBold   = "\033[1m"
	ansiReset  = "\033[0m"
	ansiYellow = "\033[33m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiBlue   = "\033[34m"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// styler applies ANSI styles only when enabled.
type styler struct{ color bool }

func (s styler) wrap(code, text string) string {
	if !s.color {
		return text
	}
	return code + text + ansiReset
}

func (s styler) bold(text string) string { return s.wrap(ansiBold, text) }

func (s styler) status(st stats.Status) string {
	switch st {
	case stats.StatusCompleted:
		return s.wrap(ansiGreen, string(st))
	case stats.StatusPending:
		return s.wrap(ansiYellow, string(st))
	case stats.StatusRejected:
		return s.wrap(ansiRed, string(st))
	case stats.StatusActive:
		return s.wrap(ansiBlue, string(st))
	}
	return string(st)
}

// formatOverview renders the terminal report.
func formatOverview(ov stats.Overview, color bool) string {
	s := styler{color: color}
	st := ov.Statistics

	var b strings.Builder
	b.WriteString(s.bold("Platform statistics"))
	if st.IsUsingSampleData {
		b.WriteString("  " + s.wrap(ansiYellow, "(sample data: run `my db init` and `my db seed`)"))
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Total listings\t%s\n", notify.FormatCount(st.TotalListings))
	fmt.Fprintf(tw, "  Active listings\t%s\n", notify.FormatCount(st.ActiveListings))
	fmt.Fprintf(tw, "  Successful matches\t%s\n", notify.FormatCount(st.SuccessfulMatches))
	fmt.Fprintf(tw, "  Pending connections\t%s\n", notify.FormatCount(st.PendingConnections))
	fmt.Fprintf(tw, "  Total interests\t%s\n", notify.FormatCount(st.TotalInterests))
	tw.Flush()

	b.WriteString("\n" + s.bold("Category performance") + "\n")
	if len(ov.Categories) == 0 {
		b.WriteString("  (no category data)\n")
	} else {
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  CATEGORY\tTOTAL\tACTIVE\tCOMPLETED\tSUCCESS")
		for _, c := range ov.Categories {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%d%%\n", c.Name, c.TotalListings, c.Active, c.Completed, c.SuccessRate)
		}
		tw.Flush()
	}

	b.WriteString("\n" + s.bold("Recent activity") + "\n")
	if len(ov.Activity) == 0 {
		b.WriteString("  (no recent activity)\n")
	} else {
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  DATE\tACTION\tCATEGORY\tREGION\tSTATUS")
		for _, a := range ov.Activity {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				dashboard.FormatTimestamp(a.Datetime), a.Action, a.Category, a.Region, s.status(a.Status))
		}
		tw.Flush()
	}

	return b.String()
}
