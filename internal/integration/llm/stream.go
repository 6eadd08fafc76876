package llm

import (
	"bufio"
	"context"
	"io"
	"sync"
)

const maxStreamLine = 1 << 20

// lineDecoder turns one line of the upstream body into a fragment.
// done marks the end of the stream; an empty fragment is skipped.
type lineDecoder func(line []byte) (fragment string, done bool, err error)

// lineStream reads a line-oriented streaming body (SSE or NDJSON).
type lineStream struct {
	body      io.ReadCloser
	scanner   *bufio.Scanner
	decode    lineDecoder
	finished  bool
	closeOnce sync.Once
	closeErr  error
}

func newLineStream(body io.ReadCloser, decode lineDecoder) *lineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	return &lineStream{
		body:    body,
		scanner: scanner,
		decode:  decode,
	}
}

func (s *lineStream) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if s.finished {
			return "", io.EOF
		}

		if !s.scanner.Scan() {
			s.finished = true
			if err := s.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		fragment, done, err := s.decode(s.scanner.Bytes())
		if err != nil {
			return "", err
		}
		if done {
			s.finished = true
		}
		if fragment == "" {
			continue
		}
		return fragment, nil
	}
}

func (s *lineStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
