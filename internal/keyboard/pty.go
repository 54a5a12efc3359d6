package keyboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// PTYEmitter types into a child process attached to a pseudo-terminal, the
// same way a user at a terminal would.
type PTYEmitter struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	tty  *os.File
	done chan struct{}
	err  error
}

// StartPTY starts name with args inside a new pseudo-terminal.
func StartPTY(name string, args ...string) (*PTYEmitter, error) {
	if name == "" {
		return nil, errors.New("command is empty")
	}
	cmd := exec.Command(name, args...)
	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	e := &PTYEmitter{cmd: cmd, tty: tty, done: make(chan struct{})}
	go func() {
		e.err = cmd.Wait()
		close(e.done)
	}()
	return e, nil
}

// InheritSize copies the window size of the terminal f to the child.
func (e *PTYEmitter) InheritSize(f *os.File) error {
	return pty.InheritSize(f, e.tty)
}

// Output is the child's terminal output.
func (e *PTYEmitter) Output() io.Reader {
	return e.tty
}

// Done is closed once the child exits.
func (e *PTYEmitter) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the child exits and returns its exit error.
func (e *PTYEmitter) Wait() error {
	<-e.done
	return e.err
}

// Close terminates the child if it is still running and releases the pty.
func (e *PTYEmitter) Close() error {
	select {
	case <-e.done:
	default:
		if e.cmd.Process != nil {
			_ = e.cmd.Process.Kill()
		}
		<-e.done
	}
	return e.tty.Close()
}

// TypeCharacter implements Emitter.
func (e *PTYEmitter) TypeCharacter(r rune) error {
	if r == '\n' {
		return e.write([]byte{'\r'})
	}
	return e.write([]byte(string(r)))
}

// PressAndRelease implements Emitter.
func (e *PTYEmitter) PressAndRelease(k Key) error {
	if seq, ok := terminalSequence(k); ok {
		return e.write(seq)
	}
	return nil
}

// PressChord implements Emitter. Chords are dropped; their control bytes
// would reach the child as line editing keys.
func (e *PTYEmitter) PressChord(...Key) error {
	return nil
}

// Write sends raw bytes to the child, for example keys the user types once
// playback is over.
func (e *PTYEmitter) Write(b []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tty.Write(b)
}

func (e *PTYEmitter) write(b []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.tty.Write(b)
	return err
}

func terminalSequence(k Key) ([]byte, bool) {
	switch k {
	case KeyEnter:
		return []byte{'\r'}, true
	case KeyBackspace:
		return []byte{0x7f}, true
	case KeyTab:
		return []byte{'\t'}, true
	case KeyEscape:
		return []byte{0x1b}, true
	}
	if r, ok := k.Rune(); ok {
		return []byte(string(r)), true
	}
	return nil, false
}
