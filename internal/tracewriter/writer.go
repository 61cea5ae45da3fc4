// Package tracewriter renders a finished run's trace to the sink(s)
// selected by configuration, then appends a human-readable summary
// table. Rendering the literal trace is this project's own format;
// the summary table reuses github.com/olekukonko/tablewriter, the
// table-rendering library several of the pack's own scheduler
// assignments reach for when turning a finished run into a report.
package tracewriter

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/oswarriors/ossim/internal/config"
	"github.com/oswarriors/ossim/internal/process"
	"github.com/oswarriors/ossim/internal/trace"
)

// ProcessSummary is one row of the post-run report: a process's
// final accounting.
type ProcessSummary struct {
	PID        int
	OpCount    int
	FinalState process.State
	TotalMs    int
}

// ResourceSummary is one row of the post-run report: a device kind's
// configured capacity and the most handles it had out at once.
type ResourceSummary struct {
	Kind           string
	Capacity       int
	PeakConcurrent int
}

// Write renders events as the literal trace and then the summary
// tables, to the sink(s) cfg.LogMode selects.
func Write(cfg *config.Config, events []trace.Event, procs []ProcessSummary, resources []ResourceSummary) error {
	var sinks []io.Writer
	if cfg.LogMode == config.LogToMonitor || cfg.LogMode == config.LogToBoth {
		sinks = append(sinks, os.Stdout)
	}
	if cfg.LogMode == config.LogToFile || cfg.LogMode == config.LogToBoth {
		f, err := os.Create(cfg.LogFilePath)
		if err != nil {
			return err
		}
		defer f.Close()
		sinks = append(sinks, f)
	}

	for _, sink := range sinks {
		writeTrace(sink, events)
		writeSummary(sink, procs, resources)
	}
	return nil
}

func writeTrace(w io.Writer, events []trace.Event) {
	for _, e := range events {
		fmt.Fprintln(w, e.String())
	}
}

func writeSummary(w io.Writer, procs []ProcessSummary, resources []ResourceSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run summary: processes")
	pt := tablewriter.NewWriter(w)
	pt.SetHeader([]string{"PID", "Operations", "Final State", "Total ms"})
	for _, p := range procs {
		pt.Append([]string{
			strconv.Itoa(p.PID),
			strconv.Itoa(p.OpCount),
			string(p.FinalState),
			strconv.Itoa(p.TotalMs),
		})
	}
	pt.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run summary: resources")
	rt := tablewriter.NewWriter(w)
	rt.SetHeader([]string{"Kind", "Capacity", "Peak Concurrent"})
	for _, r := range resources {
		rt.Append([]string{
			r.Kind,
			strconv.Itoa(r.Capacity),
			strconv.Itoa(r.PeakConcurrent),
		})
	}
	rt.Render()
}
