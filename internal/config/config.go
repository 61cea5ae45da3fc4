// Package config parses the simulator's bracketed key/value
// configuration file into a normalized Config value. The grammar is
// small and bespoke — a handful of "key: value" and "key {unit}:
// value" lines between two marker lines — so it is scanned line by
// line with bufio.Scanner and matched with regexp, the same approach
// the reference implementation's own parser takes; no pack example
// reaches for a general-purpose config library (viper, koanf, ...)
// for a format this size.
package config

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/oswarriors/ossim/internal/readyqueue"
)

// ResourceQuantities holds the configured capacity of each I/O
// device kind, in the order internal/resource pools are built.
type ResourceQuantities struct {
	HardDrive int
	Keyboard  int
	Scanner   int
	Monitor   int
	Projector int
}

// LogMode selects where the trace writer sends the rendered trace.
type LogMode string

const (
	LogToMonitor LogMode = "monitor"
	LogToFile    LogMode = "file"
	LogToBoth    LogMode = "both"
)

// Config is the fully parsed, normalized configuration.
type Config struct {
	Version        string
	MetadataPath   string
	LogMode        LogMode
	LogFilePath    string
	SchedulingCode readyqueue.Policy
	QuantumMs      int
	SystemMemoryKB int
	BlockSizeKB    int

	// CycleTimesMs maps a cycletime.Kind string to its configured
	// ms-per-cycle rate; the keys are plain strings here, and callers
	// re-key them as cycletime.Kind when building the table.
	CycleTimesMs map[string]int
	Resources    ResourceQuantities
}

var kvLine = regexp.MustCompile(`^(.+?)\s*\{(\w+)\}\s*:\s*(.+)$`)
var plainLine = regexp.MustCompile(`^(.+?):\s*(.+)$`)

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Config, error) {
	cfg := &Config{
		CycleTimesMs: make(map[string]int),
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Start ") || strings.HasPrefix(line, "End ") {
			continue
		}
		if m := kvLine.FindStringSubmatch(line); m != nil {
			if err := applyUnitKey(cfg, strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3]), line); err != nil {
				return nil, err
			}
			continue
		}
		if m := plainLine.FindStringSubmatch(line); m != nil {
			if err := applyPlainKey(cfg, strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), line); err != nil {
				return nil, err
			}
			continue
		}
		return nil, &BadConfigError{Line: line, Reason: "unrecognized configuration line"}
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Path: "<config>", Err: err}
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var deviceCycleKey = regexp.MustCompile(`^(Processor|Memory|Projector|Keyboard|Monitor|Scanner|Hard drive) cycle time$`)

func applyUnitKey(cfg *Config, key, unit, value, line string) error {
	switch key {
	case "Quantum Number":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return &BadConfigError{Line: line, Reason: "quantum must be a non-negative integer"}
		}
		cfg.QuantumMs = n
		return nil
	case "System memory":
		kb, err := toKB(value, unit)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.SystemMemoryKB = kb
		return nil
	case "Memory block size":
		kb, err := toKB(value, unit)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.BlockSizeKB = kb
		return nil
	}
	if m := deviceCycleKey.FindStringSubmatch(key); m != nil {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return &BadConfigError{Line: line, Reason: "cycle time must be a non-negative integer"}
		}
		cfg.CycleTimesMs[deviceKindKey(m[1])] = n
		return nil
	}
	return &BadConfigError{Line: line, Reason: "unrecognized key"}
}

func deviceKindKey(device string) string {
	switch device {
	case "Processor":
		return "processor"
	case "Memory":
		return "memory"
	case "Hard drive":
		return "hardDrive"
	case "Keyboard":
		return "keyboard"
	case "Scanner":
		return "scanner"
	case "Monitor":
		return "monitor"
	case "Projector":
		return "projector"
	}
	return ""
}

func toKB(value, unit string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errNonNegativeInt
	}
	switch unit {
	case "kbytes":
		return n, nil
	case "Mbytes":
		return n * 1000, nil
	case "Gbytes":
		return n * 1000000, nil
	}
	return 0, errUnknownUnit
}

var errNonNegativeInt = &badValue{"value must be a non-negative integer"}
var errUnknownUnit = &badValue{"unrecognized memory unit"}

type badValue struct{ msg string }

func (b *badValue) Error() string { return b.msg }

func applyPlainKey(cfg *Config, key, value, line string) error {
	switch key {
	case "Version/Phase":
		cfg.Version = value
		return nil
	case "File Path":
		cfg.MetadataPath = value
		return nil
	case "Log File Path":
		cfg.LogFilePath = value
		return nil
	case "Log":
		switch value {
		case "Log to Monitor":
			cfg.LogMode = LogToMonitor
		case "Log to File":
			cfg.LogMode = LogToFile
		case "Log to Both":
			cfg.LogMode = LogToBoth
		default:
			return &BadConfigError{Line: line, Reason: "unknown log mode"}
		}
		return nil
	case "CPU Scheduling Code":
		switch value {
		case "RR":
			cfg.SchedulingCode = readyqueue.RoundRobin
		case "STR":
			cfg.SchedulingCode = readyqueue.ShortestTimeRemain
		default:
			return &BadConfigError{Line: line, Reason: "unknown scheduling code"}
		}
		return nil
	case "Hard drive quantity":
		n, err := positiveInt(value)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.Resources.HardDrive = n
		return nil
	case "Keyboard quantity":
		n, err := positiveInt(value)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.Resources.Keyboard = n
		return nil
	case "Scanner quantity":
		n, err := positiveInt(value)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.Resources.Scanner = n
		return nil
	case "Monitor quantity":
		n, err := positiveInt(value)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.Resources.Monitor = n
		return nil
	case "Projector quantity":
		n, err := positiveInt(value)
		if err != nil {
			return &BadConfigError{Line: line, Reason: err.Error()}
		}
		cfg.Resources.Projector = n
		return nil
	}
	return &BadConfigError{Line: line, Reason: "unrecognized key"}
}

func positiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, &badValue{"quantity must be a positive integer"}
	}
	return n, nil
}

func validate(cfg *Config) error {
	if cfg.MetadataPath == "" {
		return &BadConfigError{Reason: "missing File Path"}
	}
	if cfg.SchedulingCode == "" {
		return &BadConfigError{Reason: "missing CPU Scheduling Code"}
	}
	if cfg.LogMode == "" {
		return &BadConfigError{Reason: "missing Log"}
	}
	if cfg.BlockSizeKB <= 0 {
		return &BadConfigError{Reason: "missing or zero Memory block size"}
	}
	if cfg.Resources.HardDrive == 0 {
		cfg.Resources.HardDrive = 1
	}
	if cfg.Resources.Keyboard == 0 {
		cfg.Resources.Keyboard = 1
	}
	if cfg.Resources.Scanner == 0 {
		cfg.Resources.Scanner = 1
	}
	if cfg.Resources.Monitor == 0 {
		cfg.Resources.Monitor = 1
	}
	if cfg.Resources.Projector == 0 {
		cfg.Resources.Projector = 1
	}
	return nil
}
