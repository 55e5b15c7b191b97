package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kenoanalyzer/config"
	"kenoanalyzer/models"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDrawFile(t *testing.T, path string, firsts ...int) {
	t.Helper()

	lines := []string{"draw_number,draw_date,draw_time,bonus,n1,n2,n3,n4,n5,n6,n7,n8,n9,n10,n11,n12,n13,n14,n15,n16,n17,n18,n19,n20"}
	for i, first := range firsts {
		fields := []string{fmt.Sprint(i + 1), "2024-01-15", "12:00", "1"}
		for j := 0; j < models.DrawSize; j++ {
			fields = append(fields, fmt.Sprint(first+j))
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func setupConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewTestConfig()
	cfg.DataRootPath = filepath.Join(dir, "data")
	cfg.ReportPath = filepath.Join(dir, "frequencies.tex")
	cfg.ChartPath = filepath.Join(dir, "frequencies.png")
	cfg.TrialCount = 2_000

	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)
	return cfg
}

func TestRun_WritesReportAndChart(t *testing.T) {
	cfg := setupConfig(t)
	writeDrawFile(t, filepath.Join(cfg.DataRootPath, "2023", "keno.csv"), 1, 21)
	writeDrawFile(t, filepath.Join(cfg.DataRootPath, "2024", "keno.csv"), 41, 61)

	require.NoError(t, Run(context.Background()))

	doc, err := os.ReadFile(cfg.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "D = 4; \\, N = 80;")
	// Every number seen exactly once: a perfectly uniform sample
	assert.Contains(t, string(doc), "$\\chi^2 = 0$")
	assert.Contains(t, string(doc), "T = 2000 trials per pick count")

	info, err := os.Stat(cfg.ChartPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_DisableChart(t *testing.T) {
	cfg := setupConfig(t)
	cfg.DisableChart = true
	writeDrawFile(t, filepath.Join(cfg.DataRootPath, "keno.csv"), 1, 21, 41, 61)

	require.NoError(t, Run(context.Background()))

	doc, err := os.ReadFile(cfg.ReportPath)
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "includegraphics")

	_, statErr := os.Stat(cfg.ChartPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MilestoneLogsLandBeforeReturn(t *testing.T) {
	cfg := setupConfig(t)
	cfg.DisableChart = true
	writeDrawFile(t, filepath.Join(cfg.DataRootPath, "keno.csv"), 1, 21, 41, 61)

	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)

	require.NoError(t, Run(context.Background()))

	messages := make(map[string]bool)
	for _, entry := range hook.AllEntries() {
		messages[entry.Message] = true
	}
	assert.True(t, messages["Frequency analysis completed"])
	assert.True(t, messages["Simulation completed"])
}

func TestRun_MalformedRecordFails(t *testing.T) {
	cfg := setupConfig(t)
	writeDrawFile(t, filepath.Join(cfg.DataRootPath, "keno.csv"), 1, 70)

	err := Run(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(cfg.ReportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_EmptyDataRoot(t *testing.T) {
	cfg := setupConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataRootPath, 0o755))

	assert.Error(t, Run(context.Background()))
}

func TestRenderLatest_RequiresDatabase(t *testing.T) {
	setupConfig(t)

	assert.Error(t, RenderLatest(context.Background()))
}

func TestConfigureLogging(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.LogLevel = "warn"
	assert.NoError(t, configureLogging(cfg))

	cfg.LogLevel = "loud"
	assert.Error(t, configureLogging(cfg))
}
