// Package narration provides Narrator implementations for the playback
// coordinator: an external text-to-speech command runner and a null
// narrator for dry runs and tests.
package narration

import (
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

// CommandNarrator speaks each utterance by spawning an external TTS
// command (espeak, say, spd-say, ...). Completion is the process exit;
// Cancel kills the in-flight process. At most one utterance runs at a
// time, matching the coordinator's one-outstanding-request invariant.
type CommandNarrator struct {
	// Command is the TTS executable to run.
	Command string

	// Args are the command arguments. The placeholders {text}, {voice},
	// and {rate} are substituted per utterance.
	Args []string

	mu      sync.Mutex
	current *exec.Cmd
}

// DefaultArgs is the argument template used when Args is empty, shaped
// for espeak-compatible tools.
var DefaultArgs = []string{"-v", "{voice}", "-s", "{rate}", "{text}"}

// Speak spawns the TTS command for the utterance and invokes done with
// the process result once it exits. The completion always fires, also
// when the process was killed by Cancel; the coordinator's generation
// guard discards those.
func (n *CommandNarrator) Speak(text, voice string, rate float64, done func(error)) {
	args := n.Args
	if len(args) == 0 {
		args = DefaultArgs
	}
	expanded := make([]string, len(args))
	for i, a := range args {
		a = strings.ReplaceAll(a, "{text}", text)
		a = strings.ReplaceAll(a, "{voice}", voice)
		a = strings.ReplaceAll(a, "{rate}", strconv.FormatFloat(rate, 'f', -1, 64))
		expanded[i] = a
	}

	cmd := exec.Command(n.Command, expanded...)
	if err := cmd.Start(); err != nil {
		logging.Error("tts command start failed", "command", n.Command, "error", err)
		go done(err)
		return
	}

	n.mu.Lock()
	n.current = cmd
	n.mu.Unlock()

	go func() {
		err := cmd.Wait()
		n.mu.Lock()
		if n.current == cmd {
			n.current = nil
		}
		n.mu.Unlock()
		done(err)
	}()
}

// Cancel kills the in-flight utterance, if any. The pending completion
// is delivered asynchronously by the wait goroutine.
func (n *CommandNarrator) Cancel() {
	n.mu.Lock()
	cmd := n.current
	n.current = nil
	n.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			logging.Warn("tts cancel failed", "error", err)
		}
	}
}

// NullNarrator completes every utterance immediately and successfully.
// Used for dry runs and tests.
type NullNarrator struct{}

// Speak invokes done synchronously.
func (NullNarrator) Speak(text, voice string, rate float64, done func(error)) {
	done(nil)
}

// Cancel is a no-op.
func (NullNarrator) Cancel() {}
