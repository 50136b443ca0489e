package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Steps reports the stages of a multi-step run, one line per stage:
//
//	[2/4] Clustering LeBron James ... done (120ms)
//
// On a terminal the stage name is written when it begins and completed on
// the same line; elsewhere a single line is written when it ends.
type Steps struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	current int
	name    string
	started time.Time
	open    bool
}

// NewSteps creates a reporter for total stages writing to stdout.
func NewSteps(total int) *Steps {
	return &Steps{total: total, writer: os.Stdout}
}

// SetWriter sets the output writer.
func (s *Steps) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Begin starts the next stage. An unfinished previous stage is closed as
// done.
func (s *Steps) Begin(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		s.finish("done", "")
	}
	s.current++
	s.name = name
	s.started = time.Now()
	s.open = true

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s %s ... ", s.prefix(), name)
	}
}

// Done completes the current stage. detail, if set, is appended in
// parentheses before the elapsed time.
func (s *Steps) Done(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(colorize(colorGreen, "done"), detail)
}

// Skip completes the current stage as skipped.
func (s *Steps) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(colorize(colorYellow, "skipped"), reason)
}

// Fail completes the current stage as failed.
func (s *Steps) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(colorize(colorRed, "failed"), err.Error())
}

func (s *Steps) prefix() string {
	return fmt.Sprintf("[%d/%d]", s.current, s.total)
}

// finish must be called with the lock held.
func (s *Steps) finish(status, detail string) {
	if !s.open {
		return
	}
	s.open = false

	elapsed := time.Since(s.started).Round(time.Millisecond)
	suffix := fmt.Sprintf("%s (%s)", status, elapsed)
	if detail != "" {
		suffix = fmt.Sprintf("%s (%s, %s)", status, detail, elapsed)
	}

	if writerIsTTY(s.writer) {
		fmt.Fprintln(s.writer, suffix)
		return
	}
	fmt.Fprintf(s.writer, "%s %s ... %s\n", s.prefix(), s.name, suffix)
}
