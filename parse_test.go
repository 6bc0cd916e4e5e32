package dudect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-yaml/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tt := []struct {
		Name     string
		Cmdline  string
		Expected []ConfigOption
		Error    bool
	}{
		{Name: "block-len", Cmdline: "--block-len 16", Expected: []ConfigOption{BlockLen(16)}},
		{Name: "max-rounds", Cmdline: "--max-rounds 75", Expected: []ConfigOption{MaxRounds(75)}},
		{Name: "batch-size", Cmdline: "--batch-size 200", Expected: []ConfigOption{BatchSize(200)}},
		{Name: "crop", Cmdline: "--crop 50", Expected: []ConfigOption{Crops(50)}},
		{Name: "crop multiple", Cmdline: "--crop 100 --crop 50,90", Expected: []ConfigOption{Crops(NoCrop, 50, 90)}},
		{Name: "order", Cmdline: "--order 1,2,3", Expected: []ConfigOption{Orders(1, 2, 3)}},
		{Name: "threshold", Cmdline: "--threshold 10", Expected: []ConfigOption{Threshold(10)}},
		{Name: "overwhelming", Cmdline: "--overwhelming 1000", Expected: []ConfigOption{Overwhelming(1000)}},
		{Name: "warmup", Cmdline: "--warmup 1", Expected: []ConfigOption{Warmup(1)}},
		{Name: "discard", Cmdline: "--discard 10", Expected: []ConfigOption{Discard(10)}},
		{Name: "min-samples", Cmdline: "--min-samples 10000", Expected: []ConfigOption{MinSamples(10000)}},
		{Name: "seed", Cmdline: "--seed 1234", Expected: []ConfigOption{Seed(1234)}},
		{Name: "history", Cmdline: "--history 10", Expected: []ConfigOption{History(10)}},
		{Name: "error on unknown flag", Cmdline: "--does-not-exist", Error: true},
		{Name: "error on bad integer", Cmdline: "--max-rounds many", Error: true},
		{Name: "error on bad crop", Cmdline: "--crop half", Error: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			pf := FlagSet()
			_, options, err := parse(strings.Split(tc.Cmdline, " "), pf)
			if tc.Error {
				assert.Error(t, err)
			} else {
				expected, received := createComparisonConfigs(tc.Expected, options)
				assert.Equal(t, expected, received)
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	args, options, err := parse([]string{"--seed", "3", "sleep-leaky"}, FlagSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"sleep-leaky"}, args)
	assert.Len(t, options, 1)
}

func TestParseYAML(t *testing.T) {
	tt := []struct {
		Name     string
		Yaml     map[string]interface{}
		Expected []ConfigOption
		Error    bool
	}{
		{Name: "max-rounds", Yaml: map[string]interface{}{"max-rounds": 75}, Expected: []ConfigOption{MaxRounds(75)}},
		{Name: "threshold", Yaml: map[string]interface{}{"threshold": 10.5}, Expected: []ConfigOption{Threshold(10.5)}},
		{Name: "threshold string", Yaml: map[string]interface{}{"threshold": "10"}, Expected: []ConfigOption{Threshold(10)}},
		{Name: "crop list", Yaml: map[string]interface{}{"crop": []float64{100, 50, 87.5}}, Expected: []ConfigOption{Crops(NoCrop, 50, 87.5)}},
		{Name: "crop single", Yaml: map[string]interface{}{"crop": 50}, Expected: []ConfigOption{Crops(50)}},
		{Name: "order list", Yaml: map[string]interface{}{"order": []int{1, 2}}, Expected: []ConfigOption{Orders(1, 2)}},
		{Name: "discard", Yaml: map[string]interface{}{"discard": 10}, Expected: []ConfigOption{Discard(10)}},
		{Name: "seed", Yaml: map[string]interface{}{"seed": 77}, Expected: []ConfigOption{Seed(77)}},
		{Name: "multiple", Yaml: map[string]interface{}{"batch-size": 100, "warmup": 2}, Expected: []ConfigOption{BatchSize(100), Warmup(2)}},
		{Name: "error on unknown key", Yaml: map[string]interface{}{"does-not-exist": 1}, Error: true},
		{Name: "error on list for scalar", Yaml: map[string]interface{}{"threshold": []int{1, 2}}, Error: true},
		{Name: "error on nested config", Yaml: map[string]interface{}{"config": "other.yml"}, Error: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			fpath := filepath.Join(t.TempDir(), "dudect.yml")
			data, err := yaml.Marshal(tc.Yaml)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(fpath, data, 0600))

			_, options, err := parse([]string{"-c", fpath}, FlagSet())
			if tc.Error {
				assert.Error(t, err)
			} else {
				expected, received := createComparisonConfigs(tc.Expected, options)
				assert.Equal(t, expected, received)
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, _, err := parse([]string{"-c", filepath.Join(t.TempDir(), "missing.yml")}, FlagSet())
	assert.Error(t, err)
}

func TestOptionsFromFlags(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "dudect.yml")
	require.NoError(t, os.WriteFile(fpath, []byte("max-rounds: 20\nbatch-size: 40\n"), 0600))

	// a command flag set holding other flags next to ours
	pf := FlagSet()
	pf.String("metrics-addr", "", "")
	require.NoError(t, pf.Parse([]string{"--config", fpath, "--max-rounds", "30", "--order", "1,3", "--metrics-addr", ":9090"}))

	options, err := OptionsFromFlags(pf)
	require.NoError(t, err)
	expected, received := createComparisonConfigs([]ConfigOption{BatchSize(40), MaxRounds(30), Orders(1, 3)}, options)
	assert.Equal(t, expected, received)
}

func createComparisonConfigs(expected []ConfigOption, received []ConfigOption) (Config, Config) {
	expectedConfig := Config{}
	for _, eo := range expected {
		eo(&expectedConfig)
	}
	receivedConfig := Config{}
	for _, to := range received {
		to(&receivedConfig)
	}
	return expectedConfig, receivedConfig
}
