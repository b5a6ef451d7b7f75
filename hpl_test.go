package hpl_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/sandbox"

	"github.com/mna/hpl"
)

// TestMain lets this test binary double as its own sandbox worker: Execute
// and Debug re-exec the running test binary (the default
// sandbox.Config.WorkerBinary)
// with sandbox.WorkerArg, the same self-re-exec worker boundary cmd/hpl's
// real main() implements. Grounded on the standard library's own
// os/exec_test.go TestHelperProcess pattern for testing subprocess-spawning
// code without a separate helper binary.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == sandbox.WorkerArg {
		os.Exit(sandbox.Main(os.Stdin, os.Stdout))
	}
	os.Exit(m.Run())
}

func TestValidateAcceptsWellFormedSource(t *testing.T) {
	diags := hpl.Validate("main: () => { echo 1 }")
	assert.Empty(t, diags)
}

func TestValidateReportsSyntaxError(t *testing.T) {
	diags := hpl.Validate("main: () => { x = }")
	require.NotEmpty(t, diags)
	assert.Equal(t, hpl.SeverityError, diags[0].Severity)
}

func TestExecuteArithmeticAndEcho(t *testing.T) {
	res, err := hpl.Execute(`main: () => { x = 3 + 4 * 2; echo x }`, hpl.Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success, res.Error)
	assert.Equal(t, "11\n", res.Output)
}

func TestExecuteIndexErrorReportsPosition(t *testing.T) {
	res, err := hpl.Execute(`main: () => {
  a = [1, 2]
  echo a[5]
}`, hpl.Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.ErrorType)
	assert.NotZero(t, res.Line)
}

func TestExecuteTimeoutReturnsTimeoutError(t *testing.T) {
	res, err := hpl.Execute(`main: () => {
  x = 0
  while (true) {
    x = x + 1
  }
}`, hpl.Options{Limits: hpl.Limits{WallClockSeconds: 0.2}})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, "TimeoutError", res.ErrorType)
}

func TestDebugProducesExecutionTrace(t *testing.T) {
	res, err := hpl.Debug(`main: () => { x = 1; echo x }`, hpl.Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success, res.Error)
	require.NotNil(t, res.Debug)
	assert.NotEmpty(t, res.Debug.ExecutionTrace)
}
