// Package metadata parses the bracketed metadata file into Process
// records: a tokenizer splits it into CAT{descriptor}cycles tokens
// (C12), and a loader assembles those tokens into Process values and
// stamps each with a fresh pid as it completes (C10). The loader is
// re-entrant: the engine calls it once at boot and again on every
// batch-timer tick, re-reading the file from the start each time, the
// same way the reference implementation treats metadata ingestion as
// a repeatable action gated only by a persistent pid counter.
package metadata

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/oswarriors/ossim/internal/process"
)

// Token is one raw CAT{descriptor}cycles step before it is resolved
// against the cycle-time table.
type Token struct {
	Category   process.Category
	Descriptor string
	Cycles     int
}

var tokenPattern = regexp.MustCompile(`(?i)([A-Z])\{([^}]*)\}(-?\d+)`)

var categoryByLetter = map[string]process.Category{
	"S": process.CategorySYS,
	"A": process.CategoryAPP,
	"P": process.CategoryCPU,
	"I": process.CategoryIN,
	"O": process.CategoryOUT,
	"M": process.CategoryMEM,
}

// Tokenize reads path and returns every token in the file, in file
// order, skipping the "Start ..." / "End ..." marker lines. Text that
// does not match the CAT{descriptor}cycles pattern is ignored.
func Tokenize(path string) ([]Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return tokenizeText(string(raw))
}

func tokenizeText(text string) ([]Token, error) {
	lines := strings.Split(text, "\n")
	var body strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "Start ") || strings.HasPrefix(trimmed, "End ") {
			continue
		}
		body.WriteString(line)
		body.WriteString(" ")
	}

	matches := tokenPattern.FindAllStringSubmatch(body.String(), -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		letter := strings.ToUpper(m[1])
		category, ok := categoryByLetter[letter]
		if !ok {
			return nil, &BadMetadataError{Token: m[0], Reason: "unknown category letter"}
		}
		cycles, err := strconv.Atoi(m[3])
		if err != nil || cycles < 0 {
			return nil, &BadMetadataError{Token: m[0], Reason: "cycle count must be a non-negative integer"}
		}
		tokens = append(tokens, Token{
			Category:   category,
			Descriptor: strings.TrimSpace(m[2]),
			Cycles:     cycles,
		})
	}
	return tokens, nil
}
