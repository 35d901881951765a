package gate

import (
	"fmt"
	"io"
	"os"

	"github.com/psantana5/workgate/pkg/clock"
	"github.com/psantana5/workgate/pkg/models"
)

// Fixed output lines of the gate and its sample operation
const (
	UnavailableMessage = "I'm unavailable!"
	AtWorkMessage      = "I am at work"
)

// Operation is a unary unit of work taking a compact HHMM time value.
// Operations produce no return value; their effects are side effects only.
type Operation func(timeOfDay int)

// Recorder receives the outcome of every gate evaluation
type Recorder interface {
	RecordCheck(window models.Window, timeOfDay int, allowed bool)
}

// Gate conditionally forwards operation calls based on an availability window.
// The window check always runs before the wrapped operation; when the check
// fails the operation is not invoked at all and the unavailability line is
// written to the gate's output instead.
type Gate struct {
	window   models.Window
	out      io.Writer
	clock    clock.Clock
	recorder Recorder
}

// New creates a gate for the given window, writing to stdout
func New(window models.Window) *Gate {
	return &Gate{
		window: window,
		out:    os.Stdout,
		clock:  clock.SystemClock{},
	}
}

// Default creates a gate for the shipped working-hours window (1100, 2100)
func Default() *Gate {
	return New(models.DefaultWindow())
}

// SetOutput sets the writer the unavailability message is emitted to
func (g *Gate) SetOutput(w io.Writer) {
	g.out = w
}

// SetClock sets the clock used by AllowNow
func (g *Gate) SetClock(c clock.Clock) {
	g.clock = c
}

// SetRecorder sets the recorder notified on every evaluation
func (g *Gate) SetRecorder(r Recorder) {
	g.recorder = r
}

// Window returns the gate's window
func (g *Gate) Window() models.Window {
	return g.window
}

// Allow reports whether timeOfDay falls strictly inside the gate's window.
// Any integer is a legal input; no range validation is applied.
func (g *Gate) Allow(timeOfDay int) bool {
	allowed := g.window.Contains(timeOfDay)
	if g.recorder != nil {
		g.recorder.RecordCheck(g.window, timeOfDay, allowed)
	}
	return allowed
}

// AllowNow evaluates the gate against the current clock time
func (g *Gate) AllowNow() (int, bool) {
	now := g.clock.Now()
	return now, g.Allow(now)
}

// Wrap produces an operation that forwards to op only when the time value is
// inside the window, and emits the unavailability line otherwise
func (g *Gate) Wrap(op Operation) Operation {
	return func(timeOfDay int) {
		if g.Allow(timeOfDay) {
			op(timeOfDay)
			return
		}
		fmt.Fprintln(g.out, UnavailableMessage)
	}
}

// WorkingHours wraps op with the default working-hours gate on stdout.
// This is the plain decorator form: WorkingHours(op)(2000) runs op.
func WorkingHours(op Operation) Operation {
	return Default().Wrap(op)
}

// AtWork returns the sample operation: it unconditionally writes the
// at-work line to w. The time value only satisfies the calling convention.
func AtWork(w io.Writer) Operation {
	return func(int) {
		fmt.Fprintln(w, AtWorkMessage)
	}
}
