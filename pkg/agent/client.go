// Package agent drives the external LLM coding agent through its CLI in
// streaming JSON mode. The process is kept alive across turns so the
// conversation has memory; a turn writes one user frame to stdin and
// relays decoded response frames until the terminating result frame.
package agent

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

// frames can carry whole file contents in tool results
const maxFrameBytes = 8 * 1024 * 1024

var _ service.AgentAPI = &Client{}

type Options struct {
	// Binary is the agent CLI executable.
	Binary string
	Model  string
	// MaxTurns bounds agent turns within a single query.
	MaxTurns       int
	PermissionMode string
	// WorkDir is the workspace instance the agent operates in.
	WorkDir string
	// SystemPrompt returns the system prompt for a new conversation. It is
	// re-evaluated on every process start so mode switches take effect.
	SystemPrompt func() (string, error)
}

type Client struct {
	opts Options
	log  zerolog.Logger

	// mu serializes turns and guards proc; the persistent conversation
	// handles one query at a time.
	mu     sync.Mutex
	proc   *process
	closed bool
}

type process struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	stderr  *bytes.Buffer
}

func New(opts Options, log zerolog.Logger) *Client {
	return &Client{
		opts: opts,
		log:  log,
	}
}

// Query sends one user turn. The returned channel is closed after the
// result frame; if the agent fails mid-turn the channel carries an error
// frame and the process is discarded so the next turn starts clean.
func (c *Client) Query(ctx context.Context, prompt string) (<-chan *service.AgentMessage, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("agent client is closed")
	}

	proc, err := c.ensureStarted()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("starting agent: %w", err)
	}

	err = writeUserTurn(proc.stdin, prompt)
	if err != nil {
		c.stopLocked()
		c.mu.Unlock()
		return nil, fmt.Errorf("sending user turn: %w", err)
	}

	out := make(chan *service.AgentMessage, 64)

	// Kill the process if the caller goes away mid-turn; receiveTurn then
	// fails on read and resets the client.
	turnDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = proc.cmd.Process.Kill()
		case <-turnDone:
		}
	}()

	// holds c.mu until the turn completes
	go func() {
		defer c.mu.Unlock()
		defer close(turnDone)
		defer close(out)

		c.receiveTurn(proc, out)
	}()

	return out, nil
}

// receiveTurn relays frames until the result frame. Called with c.mu held.
func (c *Client) receiveTurn(proc *process, out chan<- *service.AgentMessage) {
	for proc.scanner.Scan() {
		line := proc.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		msg, err := decodeFrame(line)
		if err != nil {
			c.log.Error().Err(err).Msg("decoding agent frame")
			out <- service.ErrorMessage(fmt.Sprintf("decoding agent response: %v", err))
			c.stopLocked()

			return
		}

		out <- msg

		if msg.Type == service.MessageTypeResult {
			return
		}
	}

	err := proc.scanner.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	c.log.Error().Err(err).Str("stderr", proc.stderr.String()).Msg("agent stream ended mid-turn")
	out <- service.ErrorMessage(fmt.Sprintf("agent stream ended: %v", err))
	c.stopLocked()
}

// NewConversation discards the running process; the next query starts a
// fresh one with a freshly assembled system prompt.
func (c *Client) NewConversation(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.closed = true

	return nil
}

// ensureStarted lazily starts the agent process. Called with c.mu held.
func (c *Client) ensureStarted() (*process, error) {
	if c.proc != nil {
		return c.proc, nil
	}

	systemPrompt, err := c.opts.SystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("assembling system prompt: %w", err)
	}

	args := []string{
		"--print",
		"--input-format", "stream-json",
		"--output-format", "stream-json",
		"--verbose",
		"--system-prompt", systemPrompt,
		"--model", c.opts.Model,
		"--max-turns", strconv.Itoa(c.opts.MaxTurns),
		"--add-dir", c.opts.WorkDir,
	}
	if c.opts.PermissionMode != "" {
		args = append(args, "--permission-mode", c.opts.PermissionMode)
	}

	// the process must outlive the request context, the conversation is
	// shared across turns
	cmd := exec.Command(c.opts.Binary, args...)
	cmd.Dir = c.opts.WorkDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", c.opts.Binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxFrameBytes)

	c.proc = &process{
		cmd:     cmd,
		stdin:   stdin,
		scanner: scanner,
		stderr:  stderr,
	}

	c.log.Info().
		Str("binary", c.opts.Binary).
		Str("model", c.opts.Model).
		Str("work_dir", c.opts.WorkDir).
		Msg("agent_started")

	return c.proc, nil
}

// stopLocked tears down the process. Called with c.mu held.
func (c *Client) stopLocked() {
	if c.proc == nil {
		return
	}

	_ = c.proc.stdin.Close()
	_ = c.proc.cmd.Process.Kill()
	_ = c.proc.cmd.Wait()

	c.proc = nil

	c.log.Info().Msg("agent_stopped")
}
