package utils

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ttyPath is the controlling terminal device.
func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// ReadPassphrase prompts the user for a passphrase without echoing input.
// When stdin is not a terminal (for example, document content is being piped
// in), it reads from /dev/tty (or CON on Windows) instead.
func ReadPassphrase(prompt string) ([]byte, error) {
	if IsTerminal() {
		return readPassword(int(os.Stdin.Fd()), prompt)
	}
	return ReadPassphraseFromTTY(prompt)
}

// ReadPassphraseFromTTY prompts the user for a passphrase from /dev/tty (or CON on Windows).
// Returns an error if the terminal cannot be opened.
func ReadPassphraseFromTTY(prompt string) ([]byte, error) {
	path := ttyPath()

	tty, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for passphrase input: %w", path, err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", path)
	}
	return readPassword(fd, prompt)
}

func readPassword(fd int, prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTTYAvailable returns true if /dev/tty (or CON on Windows) is available for reading.
func IsTTYAvailable() bool {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return false
	}
	defer tty.Close()

	return term.IsTerminal(int(tty.Fd()))
}
