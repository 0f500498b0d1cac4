package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func benchOutput(analyzeNs, loginNs string) string {
	var b strings.Builder
	b.WriteString("goos: linux\ngoarch: amd64\npkg: github.com/MrEthical07/dnaAuth\n")
	for _, name := range []string{"BenchmarkAnalyzeMemory", "BenchmarkAnalyzeUnmatched"} {
		b.WriteString(name + "-8   \t 1000000\t " + analyzeNs + " ns/op\t 512 B/op\t 6 allocs/op\n")
	}
	b.WriteString("BenchmarkAnalyzeRedis-8 \t 20000\t 50000 ns/op\n")
	b.WriteString("BenchmarkLoginMemory-8 \t 500000\t " + loginNs + " ns/op\t 900 B/op\t 12 allocs/op\n")
	b.WriteString("BenchmarkLoginRedis-8 \t 10000\t 90000 ns/op\n")
	b.WriteString("BenchmarkMetricsInc-8 \t 1000000000\t 1.1 ns/op\n")
	b.WriteString("PASS\n")
	return b.String()
}

func TestNormalizeBenchmarkName(t *testing.T) {
	assert.Equal(t, "BenchmarkLoginRedis", normalizeBenchmarkName("BenchmarkLoginRedis-16"))
	assert.Equal(t, "BenchmarkLoginRedis", normalizeBenchmarkName("BenchmarkLoginRedis"))
	assert.Equal(t, "BenchmarkSliding-Window", normalizeBenchmarkName("BenchmarkSliding-Window"))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
}

func TestParseBenchmarksSkipsUntracked(t *testing.T) {
	samples, err := parseBenchmarks(strings.NewReader(benchOutput("1000", "2000")))
	require.NoError(t, err)

	assert.NotContains(t, samples, "BenchmarkMetricsInc")
	assert.Equal(t, []float64{1000}, samples["BenchmarkAnalyzeMemory"]["ns/op"])
	assert.Equal(t, []float64{6}, samples["BenchmarkAnalyzeMemory"]["allocs/op"])
	assert.Equal(t, []float64{2000}, samples["BenchmarkLoginMemory"]["ns/op"])
}

func TestCompareWithinThreshold(t *testing.T) {
	base, err := parseBenchmarks(strings.NewReader(benchOutput("1000", "2000")))
	require.NoError(t, err)
	cand, err := parseBenchmarks(strings.NewReader(benchOutput("1100", "2100")))
	require.NoError(t, err)

	rows, failures := compare(base, cand, defaultThreshold)
	assert.Empty(t, failures)
	assert.NotEmpty(t, rows)
	assert.Equal(t, "BenchmarkAnalyzeMemory", rows[0].Benchmark)
}

func TestCompareFlagsRegression(t *testing.T) {
	base, err := parseBenchmarks(strings.NewReader(benchOutput("1000", "2000")))
	require.NoError(t, err)
	cand, err := parseBenchmarks(strings.NewReader(benchOutput("1000", "4000")))
	require.NoError(t, err)

	_, failures := compare(base, cand, defaultThreshold)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "BenchmarkLoginMemory ns/op regressed")
}

func TestCompareMissingSamples(t *testing.T) {
	base, err := parseBenchmarks(strings.NewReader(benchOutput("1000", "2000")))
	require.NoError(t, err)

	_, failures := compare(base, sampleSet{}, defaultThreshold)
	assert.NotEmpty(t, failures)
	for _, f := range failures {
		assert.True(t, strings.HasPrefix(f, "missing samples"), f)
	}
}
