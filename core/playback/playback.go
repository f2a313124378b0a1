// Package playback implements the sequential reading state machine: it
// walks the corpus verse by verse, chapter by chapter, book by book,
// driven by completion signals from an injected narration port, and
// reports the current position for UI synchronization.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

// ErrInvalidAddress is returned by Start when the address is out of
// bounds for the corpus.
var ErrInvalidAddress = errors.New("invalid playback address")

// Narrator is the capability interface for the external narration
// collaborator. Speak must eventually invoke done exactly once, from
// any goroutine (synchronous invocation is allowed); both a nil and a
// non-nil error count as "this utterance is over". Cancel stops any
// in-flight utterance and must not invoke a pending done synchronously.
type Narrator interface {
	Speak(text, voice string, rate float64, done func(error))
	Cancel()
}

// State is the coordinator state.
type State int

const (
	// StateIdle means nothing is being read.
	StateIdle State = iota
	// StateReading means an utterance for the current address is in flight.
	StateReading
)

func (s State) String() string {
	if s == StateReading {
		return "reading"
	}
	return "idle"
}

// Config holds narration parameters and pacing.
type Config struct {
	// Voice is the narration voice identifier passed through to the port.
	Voice string

	// Rate is the speech rate passed through to the port.
	Rate float64

	// WrapDelay is the pacing pause inserted before the first verse of a
	// new chapter or book. Purely a UX affordance.
	WrapDelay time.Duration
}

// PositionListener is notified on every state transition, before the
// next narration request is issued. The reading flag is false when the
// coordinator returns to idle. Listeners are invoked with the
// coordinator lock held and must not call back into it.
type PositionListener func(addr corpus.Address, reading bool)

// Coordinator is the playback state machine. At most one narration
// request is outstanding at any time; a generation counter makes
// Stop effective even against completion callbacks that arrive late.
type Coordinator struct {
	mu       sync.Mutex
	corpus   *corpus.Corpus
	narrator Narrator
	cfg      Config
	listener PositionListener

	state State
	addr  corpus.Address
	gen   uint64
	timer *time.Timer
}

// NewCoordinator creates an idle coordinator for the given corpus and
// narration port.
func NewCoordinator(c *corpus.Corpus, n Narrator, cfg Config) *Coordinator {
	return &Coordinator{corpus: c, narrator: n, cfg: cfg}
}

// OnPositionChange registers the position listener. Pass nil to clear.
func (c *Coordinator) OnPositionChange(l PositionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// State returns the current coordinator state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentAddress returns the address being read. The second return is
// false when the coordinator is idle.
func (c *Coordinator) CurrentAddress() (corpus.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReading {
		return corpus.Address{}, false
	}
	return c.addr, true
}

// Start begins sequential reading at the given address. If a sequence
// is already in flight it is stopped first; the coordinator never reads
// two addresses concurrently.
func (c *Coordinator) Start(addr corpus.Address) error {
	c.mu.Lock()
	if !addr.Valid(c.corpus) {
		c.mu.Unlock()
		return ErrInvalidAddress
	}

	wasReading := c.stopLocked()
	c.gen++
	gen := c.gen
	c.state = StateReading
	c.addr = addr
	c.notifyLocked()
	text := addr.Text(c.corpus)
	c.mu.Unlock()

	if wasReading {
		c.narrator.Cancel()
	}
	logging.PlaybackEvent("start", addr.String())
	c.speak(gen, text)
	return nil
}

// Stop cancels any in-flight narration and returns to idle. Idempotent
// when already idle. A completion callback for the cancelled utterance
// that arrives afterward is ignored.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	addr := c.addr
	c.stopLocked()
	c.gen++
	c.notifyLocked()
	c.mu.Unlock()

	c.narrator.Cancel()
	logging.PlaybackEvent("stop", addr.String())
}

// stopLocked moves to idle and stops the wrap timer. It returns whether
// the coordinator was reading; the caller cancels the narrator outside
// the lock.
func (c *Coordinator) stopLocked() bool {
	wasReading := c.state == StateReading
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.state = StateIdle
	return wasReading
}

// speak issues the narration request for the given generation. The
// generation is re-checked under the lock first: a Stop or restart that
// lands between a transition and its narration request must suppress
// the utterance, not just orphan its completion.
func (c *Coordinator) speak(gen uint64, text string) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateReading {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.narrator.Speak(text, c.cfg.Voice, c.cfg.Rate, func(err error) {
		c.completed(gen, err)
	})
}

// completed handles a narration completion or error. Errors advance the
// sequence exactly like completions so a single unreadable verse cannot
// stall the whole reading.
func (c *Coordinator) completed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateReading {
		// Stale callback from a cancelled or superseded sequence.
		c.mu.Unlock()
		return
	}
	if err != nil {
		logging.PlaybackEvent("narration_error", c.addr.String(), "error", err.Error())
	}

	next, ok := c.addr.Next(c.corpus)
	if !ok {
		c.state = StateIdle
		c.timer = nil
		c.notifyLocked()
		c.mu.Unlock()
		logging.PlaybackEvent("finished", "")
		return
	}

	crossed := c.addr.CrossesUnit(next)
	c.addr = next
	c.notifyLocked()
	text := next.Text(c.corpus)

	if crossed && c.cfg.WrapDelay > 0 {
		c.timer = time.AfterFunc(c.cfg.WrapDelay, func() {
			c.speakIfCurrent(gen)
		})
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.speak(gen, text)
}

// speakIfCurrent issues the pending speak request after a wrap pause,
// unless the sequence was stopped or restarted in the meantime.
func (c *Coordinator) speakIfCurrent(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateReading {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	text := c.addr.Text(c.corpus)
	c.mu.Unlock()
	c.speak(gen, text)
}

// notifyLocked reports the current position to the listener. Must run
// with the lock held, before any narration request for the transition
// is issued, so a cancellation racing a late completion can never
// surface a stale position.
func (c *Coordinator) notifyLocked() {
	if c.listener != nil {
		c.listener(c.addr, c.state == StateReading)
	}
}
