package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oswarriors/ossim/internal/cycletime"
)

type sequentialPids struct{ next int }

func (s *sequentialPids) NextPid() int {
	s.next++
	return s.next
}

func testTable() *cycletime.Table {
	return cycletime.NewTable(map[cycletime.Kind]int{
		cycletime.Processor: 10,
		cycletime.HardDrive: 20,
	})
}

func TestAssembleBuildsOneProcessPerAppBeginFinish(t *testing.T) {
	tokens := []Token{
		{Category: "SYS", Descriptor: "begin"},
		{Category: "APP", Descriptor: "begin"},
		{Category: "CPU", Descriptor: "run", Cycles: 3},
		{Category: "APP", Descriptor: "finish"},
		{Category: "SYS", Descriptor: "finish"},
	}
	pids := &sequentialPids{}
	procs, err := Assemble(tokens, testTable(), pids)
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, 1, procs[0].PID)
	require.Len(t, procs[0].Ops, 3)
	assert.Equal(t, 30, procs[0].Ops[1].Ms) // 3 cycles * 10ms processor rate
}

func TestAssembleRejectsMismatchedCategoryDescriptor(t *testing.T) {
	tokens := []Token{
		{Category: "SYS", Descriptor: "begin"},
		{Category: "APP", Descriptor: "begin"},
		{Category: "IN", Descriptor: "monitor"}, // monitor is an OUT device
		{Category: "APP", Descriptor: "finish"},
		{Category: "SYS", Descriptor: "finish"},
	}
	_, err := Assemble(tokens, testTable(), &sequentialPids{})
	require.Error(t, err)
	var bad *BadMetadataError
	assert.ErrorAs(t, err, &bad)
}

func TestAssembleRequiresSysBeginThenAppBegin(t *testing.T) {
	tokens := []Token{
		{Category: "APP", Descriptor: "begin"},
		{Category: "APP", Descriptor: "finish"},
	}
	_, err := Assemble(tokens, testTable(), &sequentialPids{})
	require.Error(t, err)
}

func TestAssemblePidsAreMonotonicAcrossMultipleProcesses(t *testing.T) {
	tokens := []Token{
		{Category: "SYS", Descriptor: "begin"},
		{Category: "APP", Descriptor: "begin"},
		{Category: "APP", Descriptor: "finish"},
		{Category: "APP", Descriptor: "begin"},
		{Category: "APP", Descriptor: "finish"},
		{Category: "SYS", Descriptor: "finish"},
	}
	procs, err := Assemble(tokens, testTable(), &sequentialPids{})
	require.NoError(t, err)
	require.Len(t, procs, 2)
	assert.Equal(t, 1, procs[0].PID)
	assert.Equal(t, 2, procs[1].PID)
}
