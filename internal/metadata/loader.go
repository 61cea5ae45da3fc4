package metadata

import (
	"github.com/oswarriors/ossim/internal/cycletime"
	"github.com/oswarriors/ossim/internal/process"
)

// allowedDescriptors enforces the category/descriptor compatibility
// table: a token whose descriptor isn't listed for its category is
// BadMetadata.
var allowedDescriptors = map[process.Category]map[string]bool{
	process.CategorySYS: {"begin": true, "finish": true},
	process.CategoryAPP: {"begin": true, "finish": true},
	process.CategoryCPU: {"run": true},
	process.CategoryIN:  {"hard drive": true, "keyboard": true, "scanner": true},
	process.CategoryOUT: {"hard drive": true, "monitor": true, "projector": true},
	process.CategoryMEM: {"block": true, "allocate": true},
}

// PidSource assigns the next monotonically increasing pid; satisfied
// by *readyqueue.Queue.
type PidSource interface {
	NextPid() int
}

// Load tokenizes path and assembles every complete Process it
// contains, assigning each a pid from pids as its APP/finish token is
// consumed. Call it again on later batches; the returned slice holds
// only the processes found in this call.
func Load(path string, table *cycletime.Table, pids PidSource) ([]*process.Process, error) {
	tokens, err := Tokenize(path)
	if err != nil {
		return nil, err
	}
	return Assemble(tokens, table, pids)
}

// Assemble validates and groups a token stream into Process values.
func Assemble(tokens []Token, table *cycletime.Table, pids PidSource) ([]*process.Process, error) {
	if len(tokens) < 2 || tokens[0].Category != process.CategorySYS || tokens[0].Descriptor != "begin" {
		return nil, &BadMetadataError{Reason: "metadata stream must open with SYS/begin"}
	}
	if tokens[1].Category != process.CategoryAPP || tokens[1].Descriptor != "begin" {
		return nil, &BadMetadataError{Reason: "metadata stream must open with APP/begin as its second token"}
	}

	var processes []*process.Process
	var current []process.Operation
	inApp := false

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Category == process.CategorySYS {
			if tok.Descriptor == "finish" {
				break
			}
			return nil, &BadMetadataError{Token: string(tok.Category), Reason: "unexpected SYS token inside a program"}
		}

		allowed := allowedDescriptors[tok.Category]
		if allowed == nil || !allowed[tok.Descriptor] {
			return nil, &BadMetadataError{Token: tok.Descriptor, Reason: "descriptor not valid for this category"}
		}

		if tok.Category == process.CategoryAPP && tok.Descriptor == "begin" {
			if inApp {
				return nil, &BadMetadataError{Reason: "APP/begin encountered before matching APP/finish"}
			}
			inApp = true
			current = []process.Operation{{Category: tok.Category, Descriptor: tok.Descriptor, Cycles: tok.Cycles, Ms: 0}}
			continue
		}

		ms, ok := table.Ms(tok.Descriptor, tok.Cycles)
		if !ok && tok.Category != process.CategoryAPP {
			return nil, &BadMetadataError{Token: tok.Descriptor, Reason: "no cycle-time entry for descriptor"}
		}
		current = append(current, process.Operation{Category: tok.Category, Descriptor: tok.Descriptor, Cycles: tok.Cycles, Ms: ms})

		if tok.Category == process.CategoryAPP && tok.Descriptor == "finish" {
			if !inApp {
				return nil, &BadMetadataError{Reason: "APP/finish without a matching APP/begin"}
			}
			inApp = false
			pid := pids.NextPid()
			processes = append(processes, process.New(pid, current))
			current = nil
		}
	}

	if inApp {
		return nil, &BadMetadataError{Reason: "metadata stream ended before a matching APP/finish"}
	}

	return processes, nil
}
