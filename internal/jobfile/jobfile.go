// Package jobfile reads the YAML job files run by the stoppable command.
package jobfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("jobfile: invalid job file")

// File is a parsed job file.
//
//	workers: 4
//	jobs:
//	  - name: lint
//	    command: golangci-lint
//	    args: [run, ./...]
//	    timeout: 5m
type File struct {
	// Workers caps parallel jobs; 0 leaves the choice to the runner.
	Workers uint   `yaml:"workers,omitempty"`
	Jobs    []*Job `yaml:"jobs,omitempty"`
}

// Job is a single command. It fails when the command exits non-zero.
type Job struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Dir     string            `yaml:"dir,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
}

// Load reads and validates the job file at path. A leading ~ is expanded.
func Load(path string) (*File, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a job file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	jf := new(File)
	if err := dec.Decode(jf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errorc.With(ErrInvalid, errorc.String("", "empty document"))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := jf.validate(); err != nil {
		return nil, err
	}
	return jf, nil
}

// validate checks every job and expands ~ in job directories.
func (f *File) validate() error {
	var err error
	if len(f.Jobs) == 0 {
		return errorc.With(ErrInvalid, errorc.String("", "at least one job is required"))
	}

	seen := make(map[string]struct{}, len(f.Jobs))
	for i, j := range f.Jobs {
		if j == nil {
			return errorc.With(ErrInvalid, errorc.String("", fmt.Sprintf("job #%d is empty", i)))
		}
		if j.Name == "" {
			return errorc.With(ErrInvalid, errorc.String("", fmt.Sprintf("job #%d has no name", i)))
		}
		if _, ok := seen[j.Name]; ok {
			return errorc.With(ErrInvalid, errorc.String("", fmt.Sprintf("duplicate job name %q", j.Name)))
		}
		seen[j.Name] = struct{}{}

		if j.Command == "" {
			return errorc.With(ErrInvalid, errorc.String("", fmt.Sprintf("job %q has no command", j.Name)))
		}
		if j.Dir, err = homedir.Expand(j.Dir); err != nil {
			return errorc.With(ErrInvalid, errorc.String("", fmt.Sprintf("job %q: %v", j.Name, err)))
		}
		if j.Timeout < 0 {
			return errorc.With(ErrInvalid, errorc.String("", fmt.Sprintf("job %q has a negative timeout", j.Name)))
		}
	}
	return nil
}

// Environ returns the job environment: the parent environment plus Env.
func (j *Job) Environ() []string {
	env := os.Environ()
	for k, v := range j.Env {
		env = append(env, k+"="+v)
	}
	return env
}
