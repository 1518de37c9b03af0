package event

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxLine bounds a single SSE or NDJSON line. opencode message events can
// carry whole file diffs.
const maxLine = 8 << 20

// DecodeError reports a payload that was not a valid event. Readers pass it to
// their OnError hook and keep going.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ReadOptions configure ReadSSE and ReadLines.
type ReadOptions struct {
	// OnError is called for every payload that fails to decode. May be nil.
	OnError func(error)
}

func (o ReadOptions) report(err error) {
	if o.OnError != nil {
		o.OnError(err)
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	return scanner
}

func dispatch(ctx context.Context, payload []byte, handler Handler, opts ReadOptions) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		opts.report(&DecodeError{Payload: string(payload), Err: err})
		return
	}
	if e.Type == "" {
		opts.report(&DecodeError{Payload: string(payload), Err: fmt.Errorf("missing type")})
		return
	}
	handler.HandleEvent(ctx, e)
}

// ReadSSE reads a text/event-stream body and hands every decoded event to
// handler. It returns nil at EOF, ctx.Err() when ctx is done, or the read
// error.
//
// Only data fields are used. Multiple data lines of one event are joined with
// newlines, comment lines and other fields are ignored.
func ReadSSE(ctx context.Context, r io.Reader, handler Handler, opts ReadOptions) error {
	scanner := newScanner(r)
	var data bytes.Buffer
	hasData := false

	flush := func() {
		if hasData {
			dispatch(ctx, data.Bytes(), handler, opts)
		}
		data.Reset()
		hasData = false
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field != "data" {
			continue
		}
		if hasData {
			data.WriteByte('\n')
		}
		data.WriteString(value)
		hasData = true
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// A stream that ends without a trailing blank line still delivers the
	// last event.
	flush()
	return nil
}

// ReadLines reads newline-delimited JSON events and hands each to handler.
// Blank lines are skipped.
func ReadLines(ctx context.Context, r io.Reader, handler Handler, opts ReadOptions) error {
	scanner := newScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dispatch(ctx, line, handler, opts)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

// LineSource is a Source reading NDJSON events from a reader, typically
// stdin.
type LineSource struct {
	r    io.Reader
	opts ReadOptions
}

// NewLineSource creates a LineSource over r.
func NewLineSource(r io.Reader, opts ReadOptions) *LineSource {
	return &LineSource{r: r, opts: opts}
}

// Subscribe reads r to the end.
func (s *LineSource) Subscribe(ctx context.Context, handler Handler) error {
	return ReadLines(ctx, s.r, handler, s.opts)
}
