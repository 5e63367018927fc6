package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	apiclient "github.com/donaldgifford/restock-monitor/internal/api/client"
	"github.com/donaldgifford/restock-monitor/internal/notify"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	return tw
}

func availabilityCell(a domain.Availability, colorize bool) string {
	s := a.String()
	if !colorize {
		return s
	}
	switch a {
	case domain.InStock:
		return text.FgGreen.Sprint(s)
	case domain.OutOfStock:
		return text.FgRed.Sprint(s)
	default:
		return text.FgYellow.Sprint(s)
	}
}

func printReport(w io.Writer, r *domain.RunReport) error {
	if jsonOutput() {
		return outputJSON(w, r)
	}
	if r.Paused {
		_, err := fmt.Fprintln(w, "Monitoring is paused; no pages were checked.")
		return err
	}

	colorize := shouldColorize(w)
	notified := make(map[string]bool, len(r.Notified))
	for _, code := range r.Notified {
		notified[code] = true
	}

	tw := newTable(w, table.Row{"CODE", "NAME", "AVAILABILITY", "NOTIFIED", "REASON"})
	for _, res := range r.Results {
		tw.AppendRow(table.Row{
			res.Item.Code,
			res.Item.Name,
			availabilityCell(res.Availability, colorize),
			yesNo(notified[res.Item.Code]),
			res.Reason,
		})
	}
	tw.Render()

	_, err := fmt.Fprintf(w, "snapshot changed: %s, notification failures: %d\n",
		yesNo(r.SnapshotChanged), r.NotifyErrors)
	return err
}

func printPauseState(w io.Writer, st apiclient.PauseState) error {
	if jsonOutput() {
		return outputJSON(w, st)
	}
	state := "running"
	if st.Paused {
		state = "paused"
	}
	_, err := fmt.Fprintf(w, "Monitoring is %s (backend: %s)\n", state, st.Backend)
	return err
}

func printSnapshot(w io.Writer, items []apiclient.SnapshotItem) error {
	if jsonOutput() {
		return outputJSON(w, map[string]any{"items": items})
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Snapshot is empty; no item has been classified yet.")
		return err
	}

	colorize := shouldColorize(w)
	tw := newTable(w, table.Row{"CODE", "NAME", "LAST KNOWN"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignLeft}})
	for _, it := range items {
		tw.AppendRow(table.Row{it.Code, it.Name, availabilityCell(domain.FromBool(it.InStock), colorize)})
	}
	tw.SetCaption("as of %s", notify.TimeLabel(time.Now()))
	tw.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
