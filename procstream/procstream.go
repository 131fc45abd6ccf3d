// Package procstream wraps an external child process (gzip, bgzip, bzip2,
// xz, bcftools, samtools, ...) as a Stream: stdin/stdout piped through the
// process, stderr captured for diagnostics, and the child killed (never
// waited on) if the caller tears the stream down after a fatal error.
//
// No reference codec in this module's lineage wraps an external process
// this way; this package follows a plain pipe-stdin/capture-stderr/kill-
// on-teardown shape and uses the stdlib os/exec idiom throughout, since no
// third-party process-supervision library fits the job any better.
package procstream

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/vale-bio/gnzip/errs"
)

// Stream owns one external process's pipes and handle.
type Stream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr bytes.Buffer

	mu     sync.Mutex
	killed bool
}

// Start launches name with args, piping this process's writes to its
// stdin and the child's stdout back to the caller via Read. stderr is
// captured in full for inclusion in any error returned by Wait.
func Start(name string, args ...string) (*Stream, error) {
	cmd := exec.Command(name, args...)

	s := &Stream{cmd: cmd}
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: procstream: stdin pipe for %s: %w", errs.ErrIO, name, err)
	}
	s.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: procstream: stdout pipe for %s: %w", errs.ErrIO, name, err)
	}
	s.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: procstream: starting %s: %w", errs.ErrIO, name, err)
	}

	return s, nil
}

// Write feeds p to the child's stdin.
func (s *Stream) Write(p []byte) (int, error) {
	n, err := s.stdin.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: procstream: writing to %s: %w", errs.ErrIO, s.cmd.Path, err)
	}

	return n, nil
}

// Read pulls decoded/encoded bytes from the child's stdout.
func (s *Stream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// CloseWrite closes the child's stdin, signaling end of input (most
// filter-style processes, gzip/bzip2/xz included, flush and exit once
// stdin reaches EOF).
func (s *Stream) CloseWrite() error {
	return s.stdin.Close()
}

// Wait closes stdin (if not already closed) and blocks for the child to
// exit normally, returning a wrapped error (including captured stderr) if
// it exited non-zero.
func (s *Stream) Wait() error {
	_ = s.stdin.Close()

	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: procstream: %s exited: %w: %s", errs.ErrIO, s.cmd.Path, err, s.stderr.String())
	}

	return nil
}

// Kill terminates the child immediately without waiting for a clean exit,
// used on the fatal-error teardown path: once anything downstream has
// failed, there is no use waiting for a codec process that may be
// blocked writing to a pipe nobody is draining anymore.
func (s *Stream) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.killed || s.cmd.Process == nil {
		return
	}
	s.killed = true

	_ = s.cmd.Process.Kill()
}
