//go:build !unix

package repo

// lockRepo is a no-op where flock is unavailable.
func lockRepo(string) (func(), error) {
	return func() {}, nil
}
