// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for setting up an isolated repository,
// capturing output and driving the command tree.
package shared

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/trove/cmd"
	logger "github.com/PolarWolf314/trove/internal/logging"
	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/spf13/cobra"
)

// TestPassword is the repository password used by integration tests.
const TestPassword = "integration test password"

// TestEnv describes an isolated trove environment.
type TestEnv struct {
	DataRoot string
	WorkDir  string
}

// RepoFolder returns the repository folder of the environment.
func (e TestEnv) RepoFolder() string {
	return filepath.Join(e.DataRoot, repo.RepoDirName)
}

// SetupTestEnvironment isolates the data root, config dir and working
// directory, and exports TestPassword for the env password source.
func SetupTestEnvironment(t *testing.T) TestEnv {
	t.Helper()

	env := TestEnv{
		DataRoot: t.TempDir(),
		WorkDir:  t.TempDir(),
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(env.WorkDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(repo.PasswordEnvVar, TestPassword)
	t.Setenv("NO_COLOR", "1")

	cmd.ResetGlobalState()
	cmd.SetSecretStore(repo.NewMemoryKeyringStore())

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		cmd.ResetGlobalState()
		cmd.SetSecretStore(repo.NewKeyringStore())
		cmd.SetPrompter(repo.TerminalPrompter)
	})

	return env
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	stdout, stderr, err := CaptureStreams(fn)
	return stdout + stderr, err
}

// CaptureStreams captures stdout and stderr separately during function execution.
func CaptureStreams(fn func() error) (string, string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	copyTo := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		out <- buf.String()
	}
	go copyTo(stdoutReader, stdoutChan)
	go copyTo(stderrReader, stderrChan)

	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan, <-stderrChan, err
}

// WithStdin runs fn with stdin replaced by a file holding content.
func WithStdin(t *testing.T, content []byte, fn func() error) error {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("Failed to write stdin file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open stdin file: %v", err)
	}
	defer f.Close()

	original := os.Stdin
	os.Stdin = f
	defer func() { os.Stdin = original }()

	return fn()
}

// CreateTestCLI creates a complete CLI instance running "repo" with args,
// the env password source and the environment's data root.
func CreateTestCLI(env TestEnv, args []string, verboseFlag, debugFlag bool) *cobra.Command {
	cmd.ResetGlobalState()
	cmd.SetVerbose(verboseFlag)
	cmd.SetDebug(debugFlag)
	cmd.SetLogger(logger.Logger{
		Verbose: verboseFlag,
		Debug:   debugFlag,
	})

	rootCmd := &cobra.Command{
		Use:          "trove",
		Short:        "Trove - an encrypted, content-addressed document repository.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(cmd.GetRepoCmd())

	full := []string{"repo"}
	full = append(full, args...)
	full = append(full, "--data-root", env.DataRoot)
	if !hasFlag(args, "--password-source") {
		full = append(full, "--password-source", "env")
	}
	if verboseFlag {
		full = append(full, "--verbose")
	}
	if debugFlag {
		full = append(full, "--debug")
	}
	rootCmd.SetArgs(full)

	return rootCmd
}

func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}

// Run executes "repo" with args and returns the combined output.
func Run(t *testing.T, env TestEnv, args ...string) (string, error) {
	t.Helper()
	return CaptureOutput(func() error {
		return CreateTestCLI(env, args, false, false).Execute()
	})
}

// SetupRepo runs "repo setup" and fails the test if it does not succeed.
func SetupRepo(t *testing.T, env TestEnv) {
	t.Helper()
	if output, err := Run(t, env, "setup"); err != nil {
		t.Fatalf("Setup failed: %v\nOutput: %s", err, output)
	}
}
