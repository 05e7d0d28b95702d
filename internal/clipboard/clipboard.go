// Package clipboard copies the selected path to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	atotto "github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Copy methods reported in CopyResult.
const (
	MethodNative = "native"
	MethodOSC52  = "osc52"
)

// CopyResult describes a successful copy.
type CopyResult struct {
	Method   string
	ByteSize int
}

// copier holds the clipboard backends.
type copier struct {
	native  func(string) error
	openTTY func() (io.WriteCloser, error)
	getenv  func(string) string
}

var defaultCopier = copier{
	native: atotto.WriteAll,
	openTTY: func() (io.WriteCloser, error) {
		return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	},
	getenv: os.Getenv,
}

// Copy puts text on the clipboard. The native clipboard (pbcopy, xclip,
// xsel, wl-copy) is tried first, then an OSC 52 escape sequence written to
// the terminal when the session looks remote or runs inside tmux.
func Copy(text string) (*CopyResult, error) {
	return defaultCopier.copy(text)
}

// WriteAll is Copy without the result, matching the clipboard callback of
// the navigator.
func WriteAll(text string) error {
	_, err := Copy(text)
	return err
}

func (c copier) copy(text string) (*CopyResult, error) {
	if text == "" {
		return nil, errors.New("no content to copy")
	}

	nativeErr := c.native(text)
	if nativeErr == nil {
		return &CopyResult{Method: MethodNative, ByteSize: len(text)}, nil
	}
	if !supportsOSC52(c.getenv) {
		return nil, fmt.Errorf("no clipboard available (install xclip, xsel or wl-copy): %w", nativeErr)
	}

	tty, err := c.openTTY()
	if err != nil {
		return nil, fmt.Errorf("cannot open terminal for OSC 52: %w", err)
	}
	defer tty.Close()
	if _, err := sequence(text, c.getenv("TMUX") != "").WriteTo(tty); err != nil {
		return nil, fmt.Errorf("OSC 52 clipboard failed: %w", err)
	}
	return &CopyResult{Method: MethodOSC52, ByteSize: len(text)}, nil
}

// sequence builds the OSC 52 sequence, wrapped for tmux passthrough when
// inTmux is set.
func sequence(text string, inTmux bool) osc52.Sequence {
	seq := osc52.New(text)
	if inTmux {
		seq = seq.Tmux()
	}
	return seq
}

// supportsOSC52 guesses whether the terminal forwards OSC 52.
func supportsOSC52(getenv func(string) string) bool {
	if getenv("SSH_TTY") != "" || getenv("SSH_CONNECTION") != "" || getenv("TMUX") != "" {
		return true
	}
	term := getenv("TERM")
	for _, t := range []string{"kitty", "alacritty", "wezterm", "foot", "xterm"} {
		if strings.Contains(term, t) {
			return true
		}
	}
	return getenv("ITERM_SESSION_ID") != "" || getenv("WT_SESSION") != ""
}
