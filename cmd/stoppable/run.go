package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/stoppable"
	"github.com/ygrebnov/stoppable/internal/jobfile"
	"github.com/ygrebnov/stoppable/metrics"
)

// waitDelay bounds how long a killed job may keep its output pipes open.
const waitDelay = 2 * time.Second

type runOptions struct {
	file        string
	workers     uint
	metricsAddr string
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every job of a job file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New()
			logger.SetOutput(cmd.ErrOrStderr())
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)

			jf, err := jobfile.Load(o.file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				jf.Workers = o.workers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			provider := metrics.Provider(metrics.NewNoopProvider())
			if o.metricsAddr != "" {
				reg := prometheus.NewRegistry()
				provider = metrics.NewPrometheusProvider("stoppable", reg)
				srv := serveMetrics(o.metricsAddr, reg, logger)
				defer shutdown(srv, logger)
			}

			return runJobs(ctx, jf, cmd.OutOrStdout(), logger, provider)
		},
	}
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "job file path")
	cmd.Flags().UintVarP(&o.workers, "workers", "w", 0, "number of parallel jobs, overrides the job file")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// runJobs runs every job of jf and returns the first failure.
func runJobs(ctx context.Context, jf *jobfile.File, out io.Writer, logger log.FieldLogger, provider metrics.Provider) error {
	opts := []stoppable.Option{
		stoppable.WithErrorTagging(),
		stoppable.WithLogger(logger),
		stoppable.WithMetrics(provider),
	}
	if jf.Workers > 0 {
		opts = append(opts, stoppable.WithFixedPool(jf.Workers))
	}

	p, err := stoppable.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	w := &lockedWriter{w: out}
	for _, j := range jf.Jobs {
		if err = p.SpawnWithID(j.Name, jobTask(j, w)); err != nil {
			p.Abort(err)
			break
		}
	}

	if err = p.Observe(ctx); err != nil {
		if name, ok := stoppable.ExtractTaskID(err); ok {
			return fmt.Errorf("job %v failed: %w", name, err)
		}
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d jobs succeeded\n", len(jf.Jobs))
	return nil
}

// jobTask runs j to completion and writes its combined output to w in one piece.
func jobTask(j *jobfile.Job, w io.Writer) stoppable.Task {
	return func(ctx context.Context) error {
		if j.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, j.Timeout)
			defer cancel()
		}

		var buf bytes.Buffer
		cmd := exec.CommandContext(ctx, j.Command, j.Args...)
		cmd.Env = j.Environ()
		cmd.Dir = j.Dir
		cmd.Stdout = &buf
		cmd.Stderr = &buf
		killProcessGroup(cmd)
		cmd.WaitDelay = waitDelay

		err := cmd.Run()
		if buf.Len() > 0 {
			fmt.Fprintf(w, "==> %s\n%s", j.Name, buf.Bytes())
		}
		if err == nil {
			return nil
		}
		// killed because the pool stopped or the job timed out
		if ctx.Err() != nil {
			cause := context.Cause(ctx)
			if j.Timeout > 0 && errors.Is(cause, context.DeadlineExceeded) {
				return fmt.Errorf("timed out after %s: %w", j.Timeout, cause)
			}
			return cause
		}
		return err
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.FieldLogger) *http.Server {
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server, logger log.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnf("metrics server shutdown: %v", err)
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(b)
}
