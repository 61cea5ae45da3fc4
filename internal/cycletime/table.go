// Package cycletime holds the ms-per-cycle lookup built from
// configuration and consulted while a metadata stream is tokenized
// into operations.
package cycletime

// Kind identifies a device or action class that consumes cycles.
type Kind string

const (
	Processor Kind = "processor"
	Memory    Kind = "memory"
	HardDrive Kind = "hardDrive"
	Keyboard  Kind = "keyboard"
	Scanner   Kind = "scanner"
	Monitor   Kind = "monitor"
	Projector Kind = "projector"
)

// descriptorKind maps a metadata descriptor to the cycle-time table
// key it draws its ms-per-cycle rate from.
var descriptorKind = map[string]Kind{
	"run":        Processor,
	"hard drive": HardDrive,
	"keyboard":   Keyboard,
	"scanner":    Scanner,
	"monitor":    Monitor,
	"projector":  Projector,
	"block":      Memory,
	"allocate":   Memory,
}

// KindOf reports which cycle-time table entry a descriptor consults,
// and whether the descriptor is recognized at all.
func KindOf(descriptor string) (Kind, bool) {
	k, ok := descriptorKind[descriptor]
	return k, ok
}

// Table is an immutable set of ms-per-cycle rates, one per Kind.
type Table struct {
	rates map[Kind]int
}

// NewTable builds a Table from the rates configured for each kind.
func NewTable(rates map[Kind]int) *Table {
	cp := make(map[Kind]int, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return &Table{rates: cp}
}

// Ms computes the total milliseconds for cycles of the given descriptor.
func (t *Table) Ms(descriptor string, cycles int) (int, bool) {
	kind, ok := KindOf(descriptor)
	if !ok {
		return 0, false
	}
	return t.rates[kind] * cycles, true
}
