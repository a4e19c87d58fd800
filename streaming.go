// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import (
	"errors"
	"io"
)

var (
	errStreamAbandoned = errors.New("streaming body released before finish")
	errExchangeDone    = errors.New("exchange finished before the body")
)

// streamSink receives the bytes of a [StreamingBody].
type streamSink interface {
	io.Writer
	// finish ends the body normally.
	finish() error
	// abort ends the body so that its receiver sees a failure.
	abort(cause error)
}

// pipeSink feeds an upstream request body.
type pipeSink struct {
	pw *io.PipeWriter
}

func (s pipeSink) Write(p []byte) (int, error) { return s.pw.Write(p) }
func (s pipeSink) finish() error               { return s.pw.Close() }
func (s pipeSink) abort(cause error)           { s.pw.CloseWithError(cause) }

// StreamingBody feeds a body to a peer while the exchange is already under
// way: a request body to a backend, or a response body to the client.
// Writes block until the peer takes the bytes.
type StreamingBody struct {
	sink     streamSink
	finished bool
	released bool
}

// newStreamingBody returns a body writing into a pipe and the pipe's read
// end. Once the exchange resolves the read end is closed, and later writes
// fail with CodeIO.
func newStreamingBody() (*StreamingBody, *io.PipeReader) {
	pr, pw := io.Pipe()
	return &StreamingBody{sink: pipeSink{pw}}, pr
}

func (s *StreamingBody) check() error {
	if s.released {
		panic("hostcall: StreamingBody used after it was consumed")
	}
	if s.finished {
		return newError(CodeIO, "streaming body already finished")
	}
	return nil
}

// Write sends p to the peer. It fails with CodeIO once the body is
// finished or the peer stopped reading.
func (s *StreamingBody) Write(p []byte) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := s.sink.Write(p)
	if err != nil {
		return n, wrapError(CodeIO, err)
	}
	return n, nil
}

// Append consumes body and writes its contents.
func (s *StreamingBody) Append(body *Body) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.Write(body.IntoBytes())
	return err
}

// Finish ends the body. Later writes fail with CodeIO.
func (s *StreamingBody) Finish() error {
	if err := s.check(); err != nil {
		return err
	}
	s.finished = true
	if err := s.sink.finish(); err != nil {
		return wrapError(CodeIO, err)
	}
	return nil
}

// Release drops the handle. An unfinished body is aborted, which fails the
// exchange.
func (s *StreamingBody) Release() {
	if s.released {
		return
	}
	s.released = true
	if !s.finished {
		s.sink.abort(errStreamAbandoned)
	}
}
