package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/logging"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

const stderrTailSize = 4096

// ProcessStrategy runs every request in its own worker process. The request
// is written to the worker's stdin as JSON and the worker is invoked as
//
//	<Executable> <Args...> --action <action>
//
// A non-zero exit status becomes a failed Outcome carrying the exit code and
// the last line the worker wrote to stderr. A crashing worker does not
// affect its siblings.
type ProcessStrategy struct {
	// Executable is the worker binary; the running executable when empty.
	Executable string
	Args       []string
	// Env is the worker environment; the parent's environment when nil.
	Env []string
	// Output receives worker stdout and stderr; os.Stderr when nil.
	Output io.Writer
}

func (p *ProcessStrategy) Name() string {
	return "process"
}

// Run starts one worker per request and waits for all of them. The action
// function is not called in this process; workers run their own.
//
// If a worker cannot be started, no further workers are started, the ones
// already running are joined and a *SchedulingFault is returned with their
// outcomes.
func (p *ProcessStrategy) Run(ctx context.Context, reqs []*product.Request, action product.Action, _ ActionFunc) ([]Outcome, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	log := logr.FromContextOrDiscard(ctx)

	exe := p.Executable
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, &SchedulingFault{Err: fmt.Errorf("failed to locate worker executable: %w", err)}
		}
		exe = self
	}

	var out io.Writer = os.Stderr
	if p.Output != nil {
		out = p.Output
	}
	out = &lockedWriter{w: out}

	results := make(chan Outcome, len(reqs))
	var (
		wg    sync.WaitGroup
		fault error
	)

	for _, req := range reqs {
		payload, err := json.Marshal(req)
		if err != nil {
			fault = &SchedulingFault{Name: req.String(), Err: fmt.Errorf("failed to encode request: %w", err)}
			break
		}

		tail := &tailBuffer{limit: stderrTailSize}
		args := append(append([]string{}, p.Args...), "--action", string(action))
		// #nosec G204
		cmd := exec.Command(exe, args...)
		cmd.Env = p.Env
		cmd.Stdin = bytes.NewReader(payload)
		cmd.Stdout = out
		cmd.Stderr = io.MultiWriter(out, tail)

		reqLog := logging.ForRequest(log, req)
		started := time.Now()
		if err := cmd.Start(); err != nil {
			fault = &SchedulingFault{Name: req.String(), Err: fmt.Errorf("failed to start worker: %w", err)}
			break
		}
		reqLog.Info("Started", "pid", cmd.Process.Pid)

		wg.Add(1)
		go func() {
			defer wg.Done()
			o := waitWorker(cmd, tail, req, action, started)
			logOutcome(reqLog, o)
			results <- o
		}()
	}

	wg.Wait()
	close(results)

	outcomes := make([]Outcome, 0, len(reqs))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes, fault
}

func waitWorker(cmd *exec.Cmd, tail *tailBuffer, req *product.Request, action product.Action, started time.Time) Outcome {
	err := cmd.Wait()
	o := Outcome{
		Name:       req.Name,
		Kind:       req.Kind,
		Action:     action,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err == nil {
		o.Success = true
		return o
	}

	actionErr := &ActionError{Name: req.Name, Kind: req.Kind, Action: action, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		actionErr.ExitCode = exitErr.ExitCode()
		if msg := tail.lastLine(); msg != "" {
			actionErr.Err = errors.New(msg)
		}
	}
	o.Err = actionErr
	return o
}

// DecodeRequest reads a request written by ProcessStrategy.
func DecodeRequest(r io.Reader) (*product.Request, error) {
	var req product.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("failed to decode request: %w", product.ErrMissingName)
	}
	return &req, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) lastLine() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := strings.Split(strings.TrimRight(string(t.buf), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
