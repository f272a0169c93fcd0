package llm

import (
	"strings"

	"github.com/sosacrazy126/gptme/internal/core"
)

// recordingStream accumulates fragments as the consumer pulls them and fires
// onDone exactly once when the underlying stream ends without error. Closing
// an unfinished stream does not fire it.
type recordingStream struct {
	inner    core.Stream
	onDone   func(full string)
	buf      strings.Builder
	recorded bool
}

func newRecordingStream(inner core.Stream, onDone func(full string)) *recordingStream {
	return &recordingStream{inner: inner, onDone: onDone}
}

func (s *recordingStream) Next() bool {
	if s.inner.Next() {
		s.buf.WriteString(s.inner.Current())
		return true
	}

	if !s.recorded && s.inner.Err() == nil {
		s.recorded = true
		s.onDone(s.buf.String())
	}
	return false
}

func (s *recordingStream) Current() string { return s.inner.Current() }
func (s *recordingStream) Err() error      { return s.inner.Err() }
func (s *recordingStream) Close() error    { return s.inner.Close() }
