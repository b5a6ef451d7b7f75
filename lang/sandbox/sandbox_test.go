package sandbox_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hpl/lang/sandbox"
)

func TestJobZeroLimitsRoundTrip(t *testing.T) {
	var job sandbox.Job
	data, err := json.Marshal(job)
	require.NoError(t, err)
	var round sandbox.Job
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, 0, round.Limits.MemoryMB, "zero-value Limits round-trips untouched before withDefaults runs")
}

func TestResultJSONRoundTrip(t *testing.T) {
	res := sandbox.Result{
		Success:       true,
		Output:        "11\n",
		ExecutionTime: 0,
		Debug: &sandbox.DebugInfo{
			ExecutionTrace: []sandbox.TraceEntry{{Type: "VARIABLE_ASSIGN", Line: 1}},
			Coverage:       []int{1, 2, 3},
			FunctionStats:  map[string]sandbox.FunctionStats{"main()": {Calls: 1}},
		},
	}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var round sandbox.Result
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, res.Success, round.Success)
	assert.Equal(t, res.Output, round.Output)
	require.NotNil(t, round.Debug)
	assert.Equal(t, []int{1, 2, 3}, round.Debug.Coverage)
	assert.Equal(t, 1, round.Debug.FunctionStats["main()"].Calls)
}

func TestJobRoundTripsBreakpoints(t *testing.T) {
	job := sandbox.Job{
		Dir:   "/tmp/whatever",
		Entry: "code.hpl",
		Breakpoints: []sandbox.Breakpoint{
			{Line: 3, Condition: "x > 0", Enabled: true},
		},
		Limits: sandbox.Limits{WallClockSeconds: 2.5},
	}
	data, err := json.Marshal(job)
	require.NoError(t, err)
	var round sandbox.Job
	require.NoError(t, json.Unmarshal(data, &round))
	require.Len(t, round.Breakpoints, 1)
	assert.Equal(t, 3, round.Breakpoints[0].Line)
	assert.Equal(t, "x > 0", round.Breakpoints[0].Condition)
	assert.Equal(t, 2.5, round.Limits.WallClockSeconds)
}

func TestNewRunnerWithEmptyConfig(t *testing.T) {
	r := sandbox.New(sandbox.Config{})
	require.NotNil(t, r)
}

func TestConfigAllowedEnvIsEmptyByDefault(t *testing.T) {
	cfg, err := sandbox.LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.AllowedEnv, "no HPL_ALLOWED_ENV set in the test environment")
}
