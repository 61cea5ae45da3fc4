package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oswarriors/ossim/internal/config"
	"github.com/oswarriors/ossim/internal/readyqueue"
)

const validConfig = `Start Simulator Configuration File
Version/Phase: 1
File Path: metadata.mdf
Log: Log to Monitor
CPU Scheduling Code: RR
Quantum Number {msec}: 50
System memory {Mbytes}: 1
Memory block size {kbytes}: 400
Processor cycle time {msec}: 10
Memory cycle time {msec}: 10
Hard drive cycle time {msec}: 20
Keyboard cycle time {msec}: 5
Monitor cycle time {msec}: 5
Scanner cycle time {msec}: 5
Projector cycle time {msec}: 5
Hard drive quantity: 2
Keyboard quantity: 1
Scanner quantity: 1
Monitor quantity: 1
Projector quantity: 1
End Simulator Configuration File
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesAllRecognizedKeys(t *testing.T) {
	cfg, err := config.Load(writeTemp(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "metadata.mdf", cfg.MetadataPath)
	assert.Equal(t, config.LogToMonitor, cfg.LogMode)
	assert.Equal(t, readyqueue.RoundRobin, cfg.SchedulingCode)
	assert.Equal(t, 50, cfg.QuantumMs)
	assert.Equal(t, 1000, cfg.SystemMemoryKB) // 1 Mbyte normalized to kB
	assert.Equal(t, 400, cfg.BlockSizeKB)
	assert.Equal(t, 10, cfg.CycleTimesMs["processor"])
	assert.Equal(t, 20, cfg.CycleTimesMs["hardDrive"])
	assert.Equal(t, 2, cfg.Resources.HardDrive)
	assert.Equal(t, 1, cfg.Resources.Keyboard)
}

func TestLoadRejectsUnknownSchedulingCode(t *testing.T) {
	bad := strings.Replace(validConfig, "CPU Scheduling Code: RR", "CPU Scheduling Code: FOO", 1)
	_, err := config.Load(writeTemp(t, bad))
	require.Error(t, err)
	var badCfg *config.BadConfigError
	assert.ErrorAs(t, err, &badCfg)
}

func TestLoadRejectsUnreadablePath(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
	var ioErr *config.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadNormalizesGbytes(t *testing.T) {
	withGB := strings.Replace(validConfig, "System memory {Mbytes}: 1", "System memory {Gbytes}: 1", 1)
	cfg, err := config.Load(writeTemp(t, withGB))
	require.NoError(t, err)
	assert.Equal(t, 1000000, cfg.SystemMemoryKB)
}
