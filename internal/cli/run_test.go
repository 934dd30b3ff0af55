package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_Locked(t *testing.T) {
	out, err := execute(t, "run", "--strategy", "locked", "--workers", "2", "--increments", "1000")
	require.NoError(t, err)

	assert.Contains(t, out, "STRATEGY")
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "2000")
	assert.Contains(t, out, "violations: 0")
	assert.Contains(t, out, "digest: ")
	assert.NotContains(t, out, "recorded:")
}

func TestRunCommand_Repeat(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", "--strategy", "thread-local", "--workers", "3", "--increments", "100", "--repeat", "4")
	require.NoError(t, err)

	var data ReportOutput
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, data.Report.Results, 4)
	for _, r := range data.Report.Results {
		assert.Equal(t, uint64(300), r.ObservedCount)
		assert.True(t, r.Correct)
	}
	assert.Equal(t, 4, data.Summary.Correct)
	assert.Len(t, data.Digest, 64)
}

func TestRunCommand_UnsynchronizedSingleWorker(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", "--strategy", "unsynchronized", "--workers", "1", "--increments", "500")
	require.NoError(t, err)

	var data ReportOutput
	decodeResponse(t, out, &data)
	require.Len(t, data.Report.Results, 1)
	assert.True(t, data.Report.Results[0].Racy)
	assert.Equal(t, uint64(500), data.Report.Results[0].ObservedCount)
}

func TestRunCommand_InvalidStrategy(t *testing.T) {
	_, err := execute(t, "run", "--strategy", "spinlock")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid --strategy")
}

func TestRunCommand_InvalidWorkers(t *testing.T) {
	_, err := execute(t, "run", "--workers", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_InvalidRepeat(t *testing.T) {
	_, err := execute(t, "run", "--repeat", "0", "--workers", "1", "--increments", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, "run", "extra")
	require.Error(t, err)
}

func TestRunCommand_Standalone(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--strategy", "atomic-cas", "--workers", "2", "--increments", "50"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "atomic-cas")
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "run", "--strategy", "atomic", "--workers", "2", "--increments", "10", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "recorded: ")

	list, err := execute(t, "--format", "json", "history", "--db", db)
	require.NoError(t, err)

	var entries []HistoryEntry
	decodeResponse(t, list, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "run atomic(workers=2, increments=10)", entries[0].Label)
	assert.True(t, entries[0].Pass)
}
