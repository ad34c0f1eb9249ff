package transcript

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

const readBufferSize = 1024 * 1024

// LineFunc receives one complete, non-blank transcript line. The slice is
// only valid for the duration of the call.
type LineFunc func(lineNo int, line []byte) error

// ReadLines streams the transcript at path line by line.
//
// A missing path yields domain.ErrNoTranscript and any other failure to open
// or read yields a *domain.IOError. A final line without a trailing newline
// is still being written by Claude Code and is skipped.
func ReadLines(ctx context.Context, path string, fn LineFunc) error {
	if path == "" {
		return domain.ErrNoTranscript
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNoTranscript
		}
		return &domain.IOError{Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return &domain.IOError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &domain.IOError{Path: path, Err: errors.New("is a directory")}
	}

	return scanLines(ctx, path, file, fn)
}

func scanLines(ctx context.Context, path string, r io.Reader, fn LineFunc) error {
	reader := bufio.NewReaderSize(r, readBufferSize)
	var long []byte
	lineNo := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// Lines longer than the buffer are stitched together
			long = append(long, chunk...)
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Trailing partial line: the writer has not finished it yet
				return nil
			}
			return &domain.IOError{Path: path, Err: err}
		}

		line := chunk
		if long != nil {
			long = append(long, chunk...)
			line = long
		}
		lineNo++

		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			if err := fn(lineNo, line); err != nil {
				return err
			}
		}
		long = nil
	}
}
