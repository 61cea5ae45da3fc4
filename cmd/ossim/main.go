// Command ossim runs one discrete-event OS simulation from a
// configuration file and writes the resulting trace and run summary.
package main

import (
	"fmt"
	"os"

	"github.com/oswarriors/ossim/internal/config"
	"github.com/oswarriors/ossim/internal/cycletime"
	"github.com/oswarriors/ossim/internal/engine"
	"github.com/oswarriors/ossim/internal/metadata"
	"github.com/oswarriors/ossim/internal/tracewriter"
	"github.com/oswarriors/ossim/pkg/log"
)

const (
	exitOK          = 0
	exitConfigIO    = 2
	exitBadConfig   = 3
	exitMetadataIO  = 4
	exitBadMetadata = 5
	exitUsage       = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.BuildLogger("info")

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ossim <config-file>")
		return exitUsage
	}

	cfg, err := config.Load(args[0])
	if err != nil {
		return reportFatal(logger, err)
	}

	table := buildCycleTimeTable(cfg)

	eng := engine.New(engine.Config{
		MetadataPath: cfg.MetadataPath,
		Table:        table,
		Policy:       cfg.SchedulingCode,
		QuantumMs:    cfg.QuantumMs,
		SystemMemKB:  cfg.SystemMemoryKB,
		BlockSizeKB:  cfg.BlockSizeKB,
		Resources: engine.ResourceCapacities{
			HardDrive: cfg.Resources.HardDrive,
			Keyboard:  cfg.Resources.Keyboard,
			Scanner:   cfg.Resources.Scanner,
			Monitor:   cfg.Resources.Monitor,
			Projector: cfg.Resources.Projector,
		},
		Logger: logger,
	})

	if err := eng.Run(); err != nil {
		return reportFatal(logger, err)
	}

	if err := writeOutput(cfg, eng); err != nil {
		logger.Error("failed writing trace output", log.ErrAttr(err))
		return exitUsage
	}

	return exitOK
}

func buildCycleTimeTable(cfg *config.Config) *cycletime.Table {
	rates := make(map[cycletime.Kind]int, len(cfg.CycleTimesMs))
	for k, v := range cfg.CycleTimesMs {
		rates[cycletime.Kind(k)] = v
	}
	return cycletime.NewTable(rates)
}

func writeOutput(cfg *config.Config, eng *engine.Engine) error {
	procs := eng.FinishedProcesses()
	summaries := make([]tracewriter.ProcessSummary, 0, len(procs))
	for _, p := range procs {
		total := 0
		for _, op := range p.Ops {
			total += op.Ms
		}
		summaries = append(summaries, tracewriter.ProcessSummary{
			PID:        p.PID,
			OpCount:    len(p.Ops),
			FinalState: p.State,
			TotalMs:    total,
		})
	}

	resourceOrder := []string{"HDD", "KBRD", "SCNR", "MNTR", "PROJ"}
	resources := make([]tracewriter.ResourceSummary, 0, len(resourceOrder))
	for _, prefix := range resourceOrder {
		pool := eng.Pools()[prefix]
		resources = append(resources, tracewriter.ResourceSummary{
			Kind:           prefix,
			Capacity:       pool.Capacity(),
			PeakConcurrent: pool.Peak(),
		})
	}

	return tracewriter.Write(cfg, eng.Trace(), summaries, resources)
}

func reportFatal(logger interface {
	Error(msg string, args ...any)
}, err error) int {
	switch err.(type) {
	case *config.IOError:
		logger.Error("configuration file unreadable", log.ErrAttr(err))
		return exitConfigIO
	case *config.BadConfigError:
		logger.Error("configuration file malformed", log.ErrAttr(err))
		return exitBadConfig
	case *metadata.IOError:
		logger.Error("metadata file unreadable", log.ErrAttr(err))
		return exitMetadataIO
	case *metadata.BadMetadataError:
		logger.Error("metadata file malformed", log.ErrAttr(err))
		return exitBadMetadata
	default:
		logger.Error("unexpected failure", log.ErrAttr(err))
		return exitUsage
	}
}
