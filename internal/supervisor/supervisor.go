// Package supervisor owns the lifecycle of the managed llama.cpp
// process: spawn, combined output streaming, graceful stop, restart.
package supervisor

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State is the supervisor lifecycle state.
type State int32

const (
	Stopped State = iota
	Starting
	Running
)

func (s State) String() string {
	switch s {
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	default:
		return "Stopped"
	}
}

// EventKind tags the observations the worker goroutine reports.
type EventKind int

const (
	// EventStarted fires once the child has been spawned.
	EventStarted EventKind = iota
	// EventLine carries one line of combined stdout/stderr output.
	EventLine
	// EventExited fires after the child has fully exited, with its
	// exit code (-1 when killed).
	EventExited
)

// Event is a single ordered observation from the managed process.
type Event struct {
	Kind EventKind
	Line string
	Code int
}

// ErrAlreadyRunning is returned when a start is requested while a
// child is active. The existing child is left untouched.
var ErrAlreadyRunning = errors.New("a process is already running")

// Supervisor manages at most one child process at a time. All
// observations flow, in arrival order, through the Events channel; the
// worker goroutine never touches anything else.
type Supervisor struct {
	// Grace is how long Stop waits after SIGTERM before killing.
	Grace time.Duration

	mu    sync.Mutex
	state State
	cmd   *exec.Cmd
	done  chan struct{}

	stopRequested atomic.Bool
	events        chan Event
}

// New returns a supervisor with the default 5-second stop grace.
func New() *Supervisor {
	return &Supervisor{
		Grace:  5 * time.Second,
		events: make(chan Event, 256),
	}
}

// Events is the ordered observation stream. The consumer must keep
// draining it while a child is active.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start spawns the child with combined stdout/stderr. It is rejected
// while a child is active; a spawn failure reverts to Stopped and is
// returned for the caller to surface.
func (s *Supervisor) Start(name string, args ...string) error {
	s.mu.Lock()
	if s.state != Stopped {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = Starting
	s.mu.Unlock()

	pr, pw, err := os.Pipe()
	if err != nil {
		s.setStopped()
		return err
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		s.setStopped()
		return fmt.Errorf("start %s: %w", filepath.Base(name), err)
	}
	// The child holds its own copy of the write end.
	pw.Close()

	done := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.done = done
	s.stopRequested.Store(false)
	s.state = Running
	s.mu.Unlock()

	s.events <- Event{Kind: EventStarted}
	go s.pump(cmd, pr, done)
	return nil
}

// pump relays output lines and reaps the child, then reports the exit
// code and closes done.
func (s *Supervisor) pump(cmd *exec.Cmd, out *os.File, done chan struct{}) {
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if s.stopRequested.Load() {
				return
			}
			s.events <- Event{Kind: EventLine, Line: scanner.Text()}
		}
	}()

	_ = cmd.Wait()
	code := cmd.ProcessState.ExitCode()

	// Give trailing output a moment to flush, then close the pipe.
	// Orphaned grandchildren may hold the write end open forever.
	select {
	case <-readerDone:
	case <-time.After(500 * time.Millisecond):
	}
	out.Close()
	<-readerDone

	s.mu.Lock()
	s.cmd = nil
	s.state = Stopped
	s.mu.Unlock()

	s.events <- Event{Kind: EventExited, Code: code}
	close(done)
}

// Stop requests graceful termination, escalating to SIGKILL after the
// grace period. It blocks until the child has fully exited. Calling it
// with no active child is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	s.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}

	s.stopRequested.Store(true)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signals are unsupported on some platforms or the process
		// is already gone.
		_ = cmd.Process.Kill()
	}

	select {
	case <-done:
	case <-time.After(s.Grace):
		_ = cmd.Process.Kill()
		<-done
	}
}

// Restart stops the current child, waits for it to fully exit so the
// listening port is released, then starts a new one.
func (s *Supervisor) Restart(name string, args ...string) error {
	s.mu.Lock()
	active := s.state != Stopped
	done := s.done
	s.mu.Unlock()

	if active {
		s.Stop()
	}
	if done != nil {
		// Covers a child that was already exiting on its own.
		select {
		case <-done:
		case <-time.After(s.Grace + time.Second):
			return errors.New("previous process did not exit in time")
		}
	}
	return s.Start(name, args...)
}

func (s *Supervisor) setStopped() {
	s.mu.Lock()
	s.state = Stopped
	s.mu.Unlock()
}
