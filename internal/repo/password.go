package repo

import (
	"errors"
	"fmt"
	"os"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/utils"
)

const (
	// KeyringService and KeyringAccount identify the password in the OS secret store.
	KeyringService = "trove"
	KeyringAccount = "text-repo"

	// PasswordEnvVar is read by the Environment source.
	PasswordEnvVar = "TROVE_PASSWORD"
)

// Prompter asks the user for a secret without echoing it.
type Prompter func(message string) (string, error)

// TerminalPrompter reads a password from the controlling terminal.
func TerminalPrompter(message string) (string, error) {
	b, err := utils.ReadPassphrase(message)
	if err != nil {
		return "", err
	}
	defer zero(b)
	return string(b), nil
}

// PasswordSource says where the repository password comes from. The set of
// implementations is closed: Prompt, Keyring, PassIn and Environment.
type PasswordSource interface {
	// Password returns the secret, or an error wrapping ErrNoPassword when
	// the source has none.
	Password() (string, error)
	String() string
	passwordSource()
}

// Prompt asks interactively. A nil Prompter reads from the terminal.
type Prompt struct {
	Prompter Prompter
}

func (p Prompt) Password() (string, error) {
	ask := p.Prompter
	if ask == nil {
		ask = TerminalPrompter
	}

	password, err := ask("Repository password: ")
	if err != nil {
		return "", fmt.Errorf("prompting for password: %w", err)
	}
	if password == "" {
		return "", kerrors.ErrNoPassword
	}
	return password, nil
}

func (Prompt) String() string  { return "prompt" }
func (Prompt) passwordSource() {}

// Keyring reads the password from a SecretStore, normally the OS credential manager.
type Keyring struct {
	Store SecretStore
}

func (k Keyring) Password() (string, error) {
	if k.Store == nil {
		return "", errors.New("keyring password source has no secret store")
	}
	return k.Store.Get(KeyringService, KeyringAccount)
}

func (Keyring) String() string  { return "keyring" }
func (Keyring) passwordSource() {}

// PassIn supplies the password directly.
type PassIn struct {
	Value string
}

func (p PassIn) Password() (string, error) {
	if p.Value == "" {
		return "", kerrors.ErrNoPassword
	}
	return p.Value, nil
}

func (PassIn) String() string  { return "pass-in" }
func (PassIn) passwordSource() {}

// Environment reads the password from Variable, or PasswordEnvVar when empty.
type Environment struct {
	Variable string
}

func (e Environment) Password() (string, error) {
	name := e.variable()
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", fmt.Errorf("%s is not set: %w", name, kerrors.ErrNoPassword)
	}
	return value, nil
}

func (e Environment) variable() string {
	if e.Variable == "" {
		return PasswordEnvVar
	}
	return e.Variable
}

func (e Environment) String() string { return "env:" + e.variable() }
func (Environment) passwordSource()  {}

// SetupIfNeeded makes sure source can produce a password. If it already can,
// nothing happens. A Keyring source without a stored password prompts twice
// and saves the result; every other source reports the original error.
func SetupIfNeeded(source PasswordSource, prompter Prompter) error {
	_, err := source.Password()
	if err == nil {
		return nil
	}
	if !errors.Is(err, kerrors.ErrNoPassword) {
		return err
	}

	kr, ok := source.(Keyring)
	if !ok || kr.Store == nil {
		return err
	}

	if prompter == nil {
		prompter = TerminalPrompter
	}

	password, err := prompter("New repository password: ")
	if err != nil {
		return fmt.Errorf("prompting for password: %w", err)
	}
	if password == "" {
		return kerrors.ErrNoPassword
	}

	confirm, err := prompter("Confirm repository password: ")
	if err != nil {
		return fmt.Errorf("prompting for confirmation: %w", err)
	}
	if confirm != password {
		return kerrors.ErrPasswordMismatch
	}

	return kr.Store.Set(KeyringService, KeyringAccount, password)
}

// ParsePasswordSource maps a CLI name to a source. store backs "keyring".
func ParsePasswordSource(name string, store SecretStore) (PasswordSource, error) {
	switch name {
	case "", "prompt":
		return Prompt{}, nil
	case "keyring":
		return Keyring{Store: store}, nil
	case "env", "environment":
		return Environment{}, nil
	default:
		return nil, fmt.Errorf("unknown password source %q (want prompt, keyring or env)", name)
	}
}
