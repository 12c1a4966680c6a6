// Package editor opens documents for the user.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kingrea/lineage/internal/document"
)

// Resolver maps a vault-relative path onto an absolute file path.
type Resolver interface {
	Abs(path string) (string, error)
}

// Opener launches an editor on a document, or prints its path when no editor
// command is configured.
type Opener struct {
	command  string
	resolver Resolver
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	run      func(cmd *exec.Cmd) error
}

// Option customizes an Opener.
type Option func(*Opener)

// WithIO replaces the standard streams handed to the editor.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(o *Opener) {
		o.stdin, o.stdout, o.stderr = stdin, stdout, stderr
	}
}

// New builds an opener. command may carry arguments ("code --wait").
func New(command string, resolver Resolver, opts ...Option) *Opener {
	o := &Opener{
		command:  strings.TrimSpace(command),
		resolver: resolver,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		run:      func(cmd *exec.Cmd) error { return cmd.Run() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open runs the editor on doc and waits for it to exit.
func (o *Opener) Open(ctx context.Context, doc document.Document) error {
	target := doc.Path
	if o.resolver != nil {
		abs, err := o.resolver.Abs(doc.Path)
		if err != nil {
			return fmt.Errorf("editor: resolve %s: %w", doc.Path, err)
		}
		target = abs
	}
	fields := strings.Fields(o.command)
	if len(fields) == 0 {
		_, err := fmt.Fprintln(o.stdout, target)
		return err
	}
	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], target)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = o.stdin, o.stdout, o.stderr
	if err := o.run(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor: %s exited with %d", fields[0], exitErr.ExitCode())
		}
		return fmt.Errorf("editor: run %s: %w", fields[0], err)
	}
	return nil
}

// Nop never opens anything. It backs --no-open.
type Nop struct{}

// Open implements relative.Opener.
func (Nop) Open(context.Context, document.Document) error { return nil }
