package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/stoppable/internal/jobfile"
	"github.com/ygrebnov/stoppable/metrics"
)

func shJob(name, script string) *jobfile.Job {
	return &jobfile.Job{Name: name, Command: "sh", Args: []string{"-c", script}}
}

func TestRunJobs(t *testing.T) {
	tests := []struct {
		name       string
		jf         *jobfile.File
		wantErr    string
		wantOutput []string
	}{
		{
			name: "all succeed",
			jf: &jobfile.File{Workers: 2, Jobs: []*jobfile.Job{
				shJob("first", "echo one"),
				shJob("second", "echo two"),
			}},
			wantOutput: []string{"==> first\none\n", "==> second\ntwo\n", "2 jobs succeeded\n"},
		},
		{
			name: "failing job stops the run",
			jf: &jobfile.File{Workers: 2, Jobs: []*jobfile.Job{
				shJob("slow", "sleep 10; echo never"),
				shJob("bad", "sleep 0.2; echo broken; exit 3"),
			}},
			wantErr:    "job bad failed: exit status 3",
			wantOutput: []string{"==> bad\nbroken\n"},
		},
		{
			name: "timeout",
			jf: &jobfile.File{Jobs: []*jobfile.Job{
				{Name: "stuck", Command: "sh", Args: []string{"-c", "sleep 10; echo never"}, Timeout: 50 * time.Millisecond},
			}},
			wantErr: "job stuck failed: timed out after 50ms: context deadline exceeded",
		},
		{
			name: "environment",
			jf: &jobfile.File{Jobs: []*jobfile.Job{
				{Name: "env", Command: "sh", Args: []string{"-c", "echo $GREETING"}, Env: map[string]string{"GREETING": "hello"}},
			}},
			wantOutput: []string{"==> env\nhello\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := logtest.NewNullLogger()
			var out bytes.Buffer

			start := time.Now()
			err := runJobs(context.Background(), tt.jf, &out, logger, metrics.NewNoopProvider())
			require.Less(t, time.Since(start), waitDelay)

			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantOutput {
				require.Contains(t, out.String(), want)
			}
			require.NotContains(t, out.String(), "never")
		})
	}
}

func TestRunJobs_Canceled(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	jf := &jobfile.File{Jobs: []*jobfile.Job{shJob("slow", "sleep 10; echo never")}}
	start := time.Now()
	err := runJobs(ctx, jf, &bytes.Buffer{}, logger, metrics.NewNoopProvider())
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), waitDelay)
}

func TestRunJobs_Metrics(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	provider := metrics.NewBasicProvider()

	jf := &jobfile.File{Workers: 1, Jobs: []*jobfile.Job{
		shJob("bad", "exit 1"),
		shJob("skipped", "true"),
	}}
	require.Error(t, runJobs(context.Background(), jf, &bytes.Buffer{}, logger, provider))
	require.EqualValues(t, 2, provider.Value("tasks_spawned_total"))
	require.EqualValues(t, 1, provider.Value("tasks_failed_total"))
	require.EqualValues(t, 1, provider.Value("tasks_skipped_total"))
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers: 1
jobs:
  - name: hello
    command: echo
    args: [hi]
`), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut string
	}{
		{name: "runs the file", args: []string{"run", "-f", path, "--log-level", "error"}, wantOut: "1 jobs succeeded"},
		{name: "workers override", args: []string{"run", "-f", path, "-w", "3", "--log-level", "error"}, wantOut: "==> hello\nhi\n"},
		{name: "metrics server", args: []string{"run", "-f", path, "--metrics-addr", "127.0.0.1:0", "--log-level", "error"}, wantOut: "1 jobs succeeded"},
		{name: "missing file flag", args: []string{"run"}, wantErr: true},
		{name: "unreadable file", args: []string{"run", "-f", filepath.Join(dir, "nope.yaml")}, wantErr: true},
		{name: "bad log level", args: []string{"run", "-f", path, "--log-level", "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			root := newRootCmd()
			root.SetOut(&out)
			root.SetErr(&errOut)
			root.SetArgs(tt.args)

			err := root.ExecuteContext(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Contains(t, out.String(), tt.wantOut)
		})
	}
}
