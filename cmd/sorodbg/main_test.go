package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalModule builds a tiny WASM binary exporting a single function
// "add" of type (i32) -> i32 whose body is just `end`, the same shape the
// core packages use in their own unit tests.
func minimalModule() []byte {
	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	typeBody := []byte{0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F}
	b = append(b, 0x01, byte(len(typeBody)))
	b = append(b, typeBody...)
	funcBody := []byte{0x01, 0x00}
	b = append(b, 0x03, byte(len(funcBody)))
	b = append(b, funcBody...)
	exportBody := []byte{0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00}
	b = append(b, 0x07, byte(len(exportBody)))
	b = append(b, exportBody...)
	codeBody := []byte{0x01, 0x02, 0x00, 0x0B}
	b = append(b, 0x0A, byte(len(codeBody)))
	b = append(b, codeBody...)
	return b
}

func writeTempContract(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.wasm")
	require.NoError(t, os.WriteFile(path, minimalModule(), 0o644))
	return path
}

func runCLI(args []string) (exitCode int, stdOut, stdErr string) {
	var outBuf, errBuf bytes.Buffer
	exitCode = doMain(args, strings.NewReader(""), &outBuf, &errBuf)
	return exitCode, outBuf.String(), errBuf.String()
}

func TestHelpWithNoArgs(t *testing.T) {
	exitCode, _, stdErr := runCLI(nil)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "sorodbg CLI")
}

func TestUnknownCommand(t *testing.T) {
	exitCode, _, stdErr := runCLI([]string{"bogus"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "unknown command")
}

func TestSymbolicAlwaysFails(t *testing.T) {
	exitCode, _, stdErr := runCLI([]string{"symbolic"})
	require.NotEqual(t, 0, exitCode)
	require.Contains(t, stdErr, "out of scope")
}

func TestRunInvokesExportedFunction(t *testing.T) {
	path := writeTempContract(t)
	exitCode, stdOut, stdErr := runCLI([]string{"run", "--contract", path, "--function", "add", "--args", `[{"type":"u32","value":7}]`})
	require.Equal(t, 0, exitCode, stdErr)
	require.Contains(t, stdOut, "=>")
}

func TestRunWithConditionalBreakpointFlag(t *testing.T) {
	path := writeTempContract(t)
	exitCode, stdOut, stdErr := runCLI([]string{
		"run", "--contract", path, "--function", "add", "--args", "[]",
		"--breakpoint", "add[arg:x>=1]",
	})
	require.Equal(t, 0, exitCode, stdErr)
	require.Contains(t, stdOut, "=>")
}

func TestRunWithMalformedConditionalBreakpointFails(t *testing.T) {
	path := writeTempContract(t)
	exitCode, _, stdErr := runCLI([]string{
		"run", "--contract", path, "--function", "add", "--args", "[]",
		"--breakpoint", "add[arg:x]",
	})
	require.NotEqual(t, 0, exitCode)
	require.Contains(t, stdErr, "no recognized operator")
}

func TestRunMissingContractFlagFails(t *testing.T) {
	exitCode, _, stdErr := runCLI([]string{"run", "--function", "add"})
	require.NotEqual(t, 0, exitCode)
	require.Contains(t, stdErr, "--contract is required")
}

func TestRunWithJSONOutput(t *testing.T) {
	path := writeTempContract(t)
	exitCode, stdOut, stdErr := runCLI([]string{"run", "--contract", path, "--function", "add", "--args", "[]", "--json"})
	require.Equal(t, 0, exitCode, stdErr)
	require.Contains(t, stdOut, `"result"`)
}

func TestInspectListsStorage(t *testing.T) {
	path := writeTempContract(t)
	storagePath := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(storagePath, []byte(`{"Counter":"0"}`), 0o644))

	exitCode, stdOut, stdErr := runCLI([]string{"inspect", "--contract", path, "--storage", storagePath})
	require.Equal(t, 0, exitCode, stdErr)
	require.Contains(t, stdOut, "Counter = 0")
}

func TestRunThenReplayReproducesTrace(t *testing.T) {
	path := writeTempContract(t)
	tracePath := filepath.Join(t.TempDir(), "trace.json")

	exitCode, _, stdErr := runCLI([]string{"run", "--contract", path, "--function", "add", "--args", "[]", "--trace-out", tracePath})
	require.Equal(t, 0, exitCode, stdErr)

	exitCode, stdOut, stdErr := runCLI([]string{"replay", "--contract", path, "--trace", tracePath})
	require.Equal(t, 0, exitCode, stdErr)
	require.Contains(t, stdOut, "Execution Trace Comparison")
}

func TestCompareRequiresTwoPaths(t *testing.T) {
	exitCode, _, stdErr := runCLI([]string{"compare", "onlyone.json"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdErr, "requires two trace file paths")
}

func TestUpgradeCheckReportsNoChannel(t *testing.T) {
	exitCode, stdOut, _ := runCLI([]string{"upgrade-check"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdOut, "no update channel")
}

func TestCompletionsPrintsScript(t *testing.T) {
	exitCode, stdOut, _ := runCLI([]string{"completions"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdOut, "_sorodbg")
}
