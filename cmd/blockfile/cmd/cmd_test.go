package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blockfile/pkg/analyzer"
	"github.com/ssargent/blockfile/pkg/api"
	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/catalog"
	"github.com/ssargent/blockfile/pkg/config"
	"github.com/ssargent/blockfile/pkg/di"
)

// writeTestConfig points every on-disk path of a config at a temp dir
func writeTestConfig(t *testing.T, catalogEnabled bool) (string, *config.Config) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "blockfile_cmd_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cfg := config.DefaultConfig()
	cfg.Storage.Output = filepath.Join(tmpDir, "alunos.dat")
	cfg.Catalog.Enabled = catalogEnabled
	cfg.Catalog.Dir = filepath.Join(tmpDir, "catalog")
	cfg.Generator.Seed = 42
	cfg.Logging.Level = "error"

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))
	return configPath, cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	SetContainer(di.NewContainer())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestPackCommand_Fixed(t *testing.T) {
	configPath, cfg := writeTestConfig(t, true)

	out, err := execute(t, "--config", configPath, "pack", "-n", "3", "-b", "169", "-l", "fixed", "--format", "json")
	require.NoError(t, err)

	var summary runSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, block.FixedBlocks, summary.Layout)
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 3, summary.Report.BlockCount)
	assert.Equal(t, 0, summary.Report.PartialBlocks)
	assert.InDelta(t, 100.0, summary.Report.Efficiency, 1e-9)
	assert.NotEmpty(t, summary.RunID)

	data, err := os.ReadFile(cfg.Storage.Output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("TAM_BLOCO:169,MODO:1\n")))
	assert.Len(t, data, len("TAM_BLOCO:169,MODO:1\n")+3*169)
	assert.Equal(t, int64(len(data)), summary.Bytes)
}

func TestPackCommand_Table(t *testing.T) {
	configPath, _ := writeTestConfig(t, false)

	out, err := execute(t, "--config", configPath, "pack", "-n", "10", "-b", "64", "-l", "spanned")
	require.NoError(t, err)

	assert.Contains(t, out, "Storage report")
	assert.Contains(t, out, "spanned")
	assert.Contains(t, out, "Efficiency")
	assert.Contains(t, out, "OCCUPANCY")
	assert.NotContains(t, out, "Run ")
}

func TestPackCommand_Errors(t *testing.T) {
	configPath, _ := writeTestConfig(t, false)

	_, err := execute(t, "--config", configPath, "pack", "-n", "3", "-b", "100", "-l", "fixed")
	assert.ErrorIs(t, err, block.ErrCapacityViolation)

	_, err = execute(t, "--config", configPath, "pack", "-n", "3", "-b", "50", "-l", "contiguous")
	assert.ErrorIs(t, err, block.ErrCapacityViolation)

	_, err = execute(t, "--config", configPath, "pack", "-l", "striped")
	assert.ErrorIs(t, err, block.ErrConfiguration)

	_, err = execute(t, "--config", configPath, "pack", "-n", "1", "--format", "xml")
	assert.Error(t, err)
}

func TestPackCommand_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "pack")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestInspectCommand(t *testing.T) {
	for _, layout := range []string{"fixed", "contiguous", "spanned"} {
		t.Run(layout, func(t *testing.T) {
			configPath, cfg := writeTestConfig(t, false)

			_, err := execute(t, "--config", configPath, "pack", "-n", "25", "-b", "200", "-l", layout)
			require.NoError(t, err)

			out, err := execute(t, "--config", configPath, "inspect", cfg.Storage.Output, "--format", "json")
			require.NoError(t, err)

			var summary runSummary
			require.NoError(t, json.Unmarshal([]byte(out), &summary))
			assert.Equal(t, layout, summary.Layout.String())
			assert.Equal(t, 25, summary.Records)
			require.NotNil(t, summary.RoundTrip)
			assert.True(t, *summary.RoundTrip)
		})
	}
}

func TestInspectCommand_ShowRecords(t *testing.T) {
	configPath, cfg := writeTestConfig(t, false)

	_, err := execute(t, "--config", configPath, "pack", "-n", "5", "-b", "256", "-l", "contiguous")
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "inspect", cfg.Storage.Output, "--show-records", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Repacked stream")
	assert.Contains(t, out, "identical")
	assert.Contains(t, out, "COURSE")
}

func TestInspectCommand_BadFile(t *testing.T) {
	configPath, _ := writeTestConfig(t, false)

	path := filepath.Join(t.TempDir(), "bad.dat")
	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0644))

	_, err := execute(t, "--config", configPath, "inspect", path)
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	configPath, _ := writeTestConfig(t, true)

	_, err := execute(t, "--config", configPath, "pack", "-n", "4", "-l", "fixed", "-b", "338")
	require.NoError(t, err)
	_, err = execute(t, "--config", configPath, "pack", "-n", "4", "-l", "spanned", "-b", "128")
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "history", "--format", "json")
	require.NoError(t, err)

	var runs []*catalog.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)

	id := runs[0].ID.String()
	out, err = execute(t, "--config", configPath, "history", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Storage report")

	out, err = execute(t, "--config", configPath, "history", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run")

	_, err = execute(t, "--config", configPath, "history", "show", id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	out, err = execute(t, "--config", configPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATED")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	configPath, _ := writeTestConfig(t, false)

	_, err := execute(t, "--config", configPath, "history")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestInitCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "--config", configPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, configPath)
	assert.True(t, config.ConfigExists(configPath))

	loaded, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), loaded)

	_, err = execute(t, "--config", configPath, "init")
	assert.Error(t, err)

	_, err = execute(t, "--config", configPath, "init", "--force")
	assert.NoError(t, err)
}

type recordingStarter struct {
	config api.ServerConfig
	runs   api.RunStore
}

func (s *recordingStarter) StartServer(ctx context.Context, config api.ServerConfig, runs api.RunStore, logger *slog.Logger) error {
	s.config = config
	s.runs = runs
	return nil
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

func TestServeCommand(t *testing.T) {
	configPath, _ := writeTestConfig(t, false)

	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(&recordingFactory{starter: starter})
	SetContainer(c)

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", configPath, "serve", "--port", "9123", "--api-key", "k"})
	require.NoError(t, root.Execute())

	assert.Equal(t, 9123, starter.config.Port)
	assert.Equal(t, "127.0.0.1", starter.config.Bind)
	assert.Equal(t, "k", starter.config.APIKey)
	assert.Equal(t, 512, starter.config.BlockSize)
	assert.Equal(t, block.VariableSpanned, starter.config.Layout)
	assert.Nil(t, starter.runs)
}

// scriptedReader replays answers as if typed at the prompt
type scriptedReader struct {
	answers []string
	prompts []string
}

func (r *scriptedReader) SetPrompt(prompt string) {
	r.prompts = append(r.prompts, prompt)
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.answers) == 0 {
		return "", io.EOF
	}
	line := r.answers[0]
	r.answers = r.answers[1:]
	return line, nil
}

func TestAskPackParams(t *testing.T) {
	testCases := []struct {
		name    string
		answers []string
		want    packParams
		wantErr error
	}{
		{
			name:    "fixed",
			answers: []string{"10", "1", "512"},
			want:    packParams{Records: 10, BlockSize: 512, Layout: block.FixedBlocks},
		},
		{
			name:    "contiguous",
			answers: []string{"5", "2", "256", "1"},
			want:    packParams{Records: 5, BlockSize: 256, Layout: block.VariableContiguous},
		},
		{
			name:    "spanned after retries",
			answers: []string{"abc", "-1", "7", "3", "2", "0", "64", "9", "2"},
			want:    packParams{Records: 7, BlockSize: 64, Layout: block.VariableSpanned},
		},
		{
			name:    "eof aborts",
			answers: []string{"3"},
			wantErr: errAborted,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := askPackParams(&scriptedReader{answers: tc.answers}, &out)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type interruptReader struct{}

func (interruptReader) SetPrompt(string) {}

func (interruptReader) Readline() (string, error) {
	return "", readline.ErrInterrupt
}

func TestAskPackParams_Interrupt(t *testing.T) {
	_, err := askPackParams(interruptReader{}, io.Discard)
	assert.ErrorIs(t, err, errAborted)
}

func TestAskPackParams_RetryMessages(t *testing.T) {
	var out bytes.Buffer
	_, err := askPackParams(&scriptedReader{answers: []string{"x", "1", "3", "1", "169"}}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Not a number: "x"`)
	assert.Contains(t, out.String(), "Invalid value 3")
}

func TestPrintRuns_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRuns(&out, formatTable, nil))
	assert.Equal(t, "No runs recorded", strings.TrimSpace(out.String()))
}

func TestBlockRowStyle(t *testing.T) {
	report := analyzer.Report{
		BlockSize: 10,
		Blocks: []analyzer.BlockUsage{
			{Index: 0, Bytes: 10},
			{Index: 1, Bytes: 4},
			{Index: 2, Bytes: 10},
		},
	}
	style := blockRowStyle(report)

	assert.Equal(t, headerStyle, style(headerRow, 0))
	assert.Equal(t, cellStyle, style(1, 0), "first block is full")
	assert.Equal(t, partialStyle, style(2, 1), "second block is partial")
	assert.Equal(t, cellStyle, style(3, 2), "third block is full")
	assert.Equal(t, cellStyle, style(4, 0), "rows past the data")
}

func TestPlainRowStyle(t *testing.T) {
	assert.Equal(t, headerStyle, plainRowStyle(headerRow, 0))
	assert.Equal(t, cellStyle, plainRowStyle(1, 0))
}
