package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lwe "github.com/BackendStack21/lwe-go"
	"github.com/BackendStack21/lwe-go/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeedHex = "8f3a1c77d2e94b06a5c3e81f2d7b9460c1e5a2f8047d3b96e2a1c58f70b4d3e9"

func runCmd(t *testing.T, command string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(command, args, &out))
	return out.String()
}

func TestVersionAndHelp(t *testing.T) {
	out := runCmd(t, "version")
	assert.Contains(t, out, appName+" version "+version)
	assert.Contains(t, out, lwe.Version)

	assert.Contains(t, runCmd(t, "help"), "COMMANDS:")

	var out2 bytes.Buffer
	assert.Error(t, run("frobnicate", nil, &out2))
}

func TestParseConfigDefaults(t *testing.T) {
	config, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, lwe.LWETOY, config.Params.Name)
	assert.Equal(t, analysis.Asymmetric, config.Mode)
	assert.Equal(t, 1, config.Bit)
	assert.Equal(t, FormatJSON, config.OutputFormat)

	config, err = parseConfig([]string{"--params", "256"})
	require.NoError(t, err)
	assert.Equal(t, lwe.LWE256, config.Params.Name)
	assert.Equal(t, analysis.Symmetric, config.Mode, "LWE-256 defaults to the symmetric mode")
}

func TestParseConfigCustomAndErrors(t *testing.T) {
	config, err := parseConfig([]string{"--n", "16", "--q", "3329", "--sigma", "1.5", "-m", "sym", "-b", "0", "--seed", "00ff"})
	require.NoError(t, err)
	assert.Equal(t, lwe.Params{Name: lwe.Custom, N: 16, Q: 3329, Sigma: 1.5}, config.Params)
	assert.Equal(t, analysis.Symmetric, config.Mode)
	assert.Equal(t, 0, config.Bit)
	assert.Equal(t, []byte{0x00, 0xff}, config.Seed)

	bad := [][]string{
		{"--params", "512"},
		{"--q", "256"},
		{"--sigma", "wide"},
		{"--bit", "2"},
		{"--bit", "one"},
		{"--mode", "hybrid"},
		{"--format", "xml"},
		{"--seed", "zz"},
	}
	for _, args := range bad {
		_, err := parseConfig(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestGetArgHasFlag(t *testing.T) {
	args := []string{"--mode", "sym", "-t", "--output"}
	assert.Equal(t, "sym", getArg(args, "--mode", "-m"))
	assert.Equal(t, "", getArg(args, "--output", "-o"), "flag without a value")
	assert.True(t, hasFlag(args, "--timing", "-t"))
	assert.False(t, hasFlag(args, "--verbose", ""))
}

func TestParamsCommand(t *testing.T) {
	var exports []ParamsExport
	require.NoError(t, json.Unmarshal([]byte(runCmd(t, "params")), &exports))
	require.Len(t, exports, 2)
	assert.Equal(t, lwe.LWETOY, exports[0].Name)
	assert.Equal(t, lwe.LWE256, exports[1].Name)
	for _, e := range exports {
		assert.Less(t, e.Log2FailureProb, -100.0)
		assert.Greater(t, e.NoiseStdDev, 0.0)
		assert.Regexp(t, `^[1-9]\.\d{4}e-\d+$`, e.FailureBound)
	}

	text := runCmd(t, "params", "-p", "toy", "-f", "text")
	assert.Contains(t, text, "FAILURE BOUND")
	assert.Contains(t, text, "LWE-TOY")
	assert.NotContains(t, text, "LWE-256")
}

func TestDemoCommand(t *testing.T) {
	for _, args := range [][]string{
		{"--params", "toy", "--mode", "asym", "--bit", "1"},
		{"--params", "256", "--mode", "sym", "--bit", "0"},
		{"--params", "toy", "--mode", "sym", "--bit", "1", "--seed", testSeedHex},
	} {
		var export DemoExport
		require.NoError(t, json.Unmarshal([]byte(runCmd(t, "demo", args...)), &export), "args %v", args)
		assert.True(t, export.Match, "args %v", args)
		assert.Equal(t, export.Bit, export.Decrypted)
		assert.Len(t, export.C1, export.Params.N)
	}
}

func TestDemoSeedIsReproducible(t *testing.T) {
	args := []string{"--params", "toy", "--mode", "asym", "--seed", testSeedHex}
	a := runCmd(t, "demo", args...)
	b := runCmd(t, "demo", args...)
	assert.Equal(t, a, b)

	var export DemoExport
	require.NoError(t, json.Unmarshal([]byte(a), &export))
	assert.Len(t, export.Fingerprint, 64)

	var out bytes.Buffer
	assert.Error(t, run("demo", []string{"--seed", "0000"}, &out), "short seed")
}

func TestMessageCommand(t *testing.T) {
	var export MessageExport
	require.NoError(t, json.Unmarshal([]byte(runCmd(t, "message", "--message", "hi LWE")), &export))
	assert.Equal(t, "hi LWE", export.Decrypted)
	assert.Equal(t, 48, export.Ciphertexts)
	assert.Equal(t, 0, export.BitErrors)

	var out bytes.Buffer
	assert.Error(t, run("message", nil, &out))
}

func TestMessageSeedIsReproducible(t *testing.T) {
	for _, mode := range []string{"asym", "sym"} {
		args := []string{"--message", "ok", "-p", "256", "--mode", mode, "--seed", testSeedHex}
		var a, b MessageExport
		require.NoError(t, json.Unmarshal([]byte(runCmd(t, "message", args...)), &a))
		require.NoError(t, json.Unmarshal([]byte(runCmd(t, "message", args...)), &b))
		assert.Len(t, a.Fingerprint, 64, mode)
		assert.Equal(t, a.Fingerprint, b.Fingerprint, mode)
		assert.Equal(t, "ok", a.Decrypted, mode)

		var c MessageExport
		require.NoError(t, json.Unmarshal([]byte(runCmd(t, "message", "--message", "ok", "-p", "256", "--mode", mode)), &c))
		assert.NotEqual(t, a.Fingerprint, c.Fingerprint, mode)
	}

	var out bytes.Buffer
	assert.Error(t, run("message", []string{"--message", "ok", "--seed", "0000"}, &out), "short seed")
}

func TestTrialCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	out := runCmd(t, "trial", "--params", "toy", "--count", "200", "--seed", testSeedHex, "--output", path)
	assert.Empty(t, out)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report analysis.TrialReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 200, report.Count)
	assert.Equal(t, 0, report.Mismatches)

	text := runCmd(t, "trial", "-p", "toy", "-c", "50", "-f", "text")
	assert.True(t, strings.HasPrefix(text, "LWE-TOY asymmetric"), text)
}

func TestBenchmarkCommand(t *testing.T) {
	out := runCmd(t, "benchmark", "--params", "toy", "--iterations", "2")
	assert.Contains(t, out, "Asymmetric")
	assert.Contains(t, out, "Symmetric")
	assert.Contains(t, out, "Benchmark complete!")
}

func TestBitErrors(t *testing.T) {
	assert.Equal(t, 0, bitErrors([]byte("ab"), []byte("ab")))
	assert.Equal(t, 1, bitErrors([]byte{0x01}, []byte{0x00}))
	assert.Equal(t, 8, bitErrors([]byte{0x00, 0xff}, []byte{0x00}))
}
