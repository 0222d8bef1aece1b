// Package gitvcs drives plugin repositories with the git binary. It exposes
// exactly the three primitives the operation engine needs: materialize a
// clone, fast-forward it, remove it. Each primitive is idempotent with
// respect to an already-satisfied end state.
package gitvcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Error types for version-control operations.
var (
	// ErrSourceUnreachable indicates a network or authentication failure
	// talking to the remote. The local copy, if any, is left untouched.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrDestinationConflict indicates the destination exists but is not a
	// clone of the requested source.
	ErrDestinationConflict = errors.New("destination conflict")

	// ErrLocalModifications indicates uncommitted changes that a
	// fast-forward would overwrite. User edits are never discarded.
	ErrLocalModifications = errors.New("local modifications")

	// ErrNotFound indicates the destination does not exist.
	ErrNotFound = errors.New("destination not found")
)

// Operator runs git with a bounded timeout per network command.
type Operator struct {
	timeout time.Duration
}

// New creates an operator. timeout bounds every network-touching command.
func New(timeout time.Duration) *Operator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Operator{timeout: timeout}
}

// Materialize ensures dest is a clone of source and returns the checked-out
// revision. An existing clone of the same source is already satisfied; an
// existing directory with any other content is a conflict.
func (o *Operator) Materialize(ctx context.Context, source, dest string) (string, error) {
	if _, err := os.Stat(dest); err == nil {
		origin, err := o.git(ctx, dest, "remote", "get-url", "origin")
		if err != nil {
			return "", fmt.Errorf("%w: %s exists and is not a git clone", ErrDestinationConflict, dest)
		}
		if !sameRemote(origin, source) {
			return "", fmt.Errorf("%w: %s is a clone of %s, not %s", ErrDestinationConflict, dest, origin, source)
		}
		return o.head(ctx, dest)
	}

	netCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if _, err := o.git(netCtx, "", "clone", "--depth", "1", source, dest); err != nil {
		// A partial clone directory must not survive a failed clone.
		os.RemoveAll(dest)
		return "", classifyRemoteErr(err, source)
	}
	return o.head(ctx, dest)
}

// Update fetches and fast-forwards dest to the upstream default branch tip,
// returning the resulting revision. A dirty working tree or diverged local
// history fails with ErrLocalModifications; a network failure leaves the
// clone untouched and fails with ErrSourceUnreachable.
func (o *Operator) Update(ctx context.Context, dest string) (string, error) {
	if _, err := os.Stat(dest); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, dest)
	}

	status, err := o.git(ctx, dest, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a git clone", ErrDestinationConflict, dest)
	}
	if strings.TrimSpace(status) != "" {
		return "", fmt.Errorf("%w in %s", ErrLocalModifications, dest)
	}

	netCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if _, err := o.git(netCtx, dest, "pull", "--ff-only"); err != nil {
		if isDivergedErr(err) {
			return "", fmt.Errorf("%w in %s: local history diverged from upstream", ErrLocalModifications, dest)
		}
		return "", classifyRemoteErr(err, dest)
	}
	return o.head(ctx, dest)
}

// Remove deletes the clone at dest recursively. A missing destination is
// reported as ErrNotFound; callers treat that as already satisfied.
func (o *Operator) Remove(dest string) error {
	if _, err := os.Stat(dest); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, dest)
		}
		return fmt.Errorf("stat %s: %w", dest, err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("remove %s: %w", dest, err)
	}
	return nil
}

// head reports the currently checked-out revision.
func (o *Operator) head(ctx context.Context, dest string) (string, error) {
	rev, err := o.git(ctx, dest, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD in %s: %w", dest, err)
	}
	return strings.TrimSpace(rev), nil
}

// git runs a git command, returning stdout. On failure the error carries the
// trimmed stderr, which classifyRemoteErr inspects.
func (o *Operator) git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Never fall back to interactive credential prompts.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), ctx.Err())
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// classifyRemoteErr maps git's stderr to the operator's error taxonomy.
// Anything that looks like a transport or auth problem is unreachable.
func classifyRemoteErr(err error, source string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnreachable, source, err)
	}
	msg := strings.ToLower(err.Error())
	unreachable := []string{
		"could not resolve host",
		"unable to access",
		"could not read from remote",
		"connection timed out",
		"connection refused",
		"authentication failed",
		"permission denied",
		"repository not found",
	}
	for _, needle := range unreachable {
		if strings.Contains(msg, needle) {
			return fmt.Errorf("%w: %s: %v", ErrSourceUnreachable, source, err)
		}
	}
	return err
}

func isDivergedErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not possible to fast-forward") ||
		strings.Contains(msg, "diverg")
}

// sameRemote compares remote URLs, ignoring a trailing ".git" and slash.
func sameRemote(a, b string) bool {
	normalize := func(u string) string {
		u = strings.TrimSpace(u)
		u = strings.TrimSuffix(u, "/")
		u = strings.TrimSuffix(u, ".git")
		return u
	}
	return normalize(a) == normalize(b)
}
