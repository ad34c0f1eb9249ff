package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTranscript means the transcript path is unset or does not exist.
	ErrNoTranscript = errors.New("no active transcript")
	// ErrUnresolvedModelLimit means no context window is known for a model.
	ErrUnresolvedModelLimit = errors.New("unresolved model limit")
	// ErrNotGitRepo means the working directory is outside a git repository.
	ErrNotGitRepo = errors.New("not a git repository")
)

// IOError reports an unreadable transcript.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read transcript %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
