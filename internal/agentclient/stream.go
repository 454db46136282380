package agentclient

import "io"

// Stream is a lazy, finite, non-restartable pull-based sequence of
// Messages, mirroring jack-phare-goat's Stream.Next()/io.EOF idiom rather
// than the teacher's own callback-based ChatStream, because this spec's
// session needs to pause consumption at a cancellation boundary between
// messages — something a pull iterator expresses more directly than a
// push callback.
type Stream struct {
	events <-chan streamEvent
	cancel func()
}

type streamEvent struct {
	msg Message
	err error
	end bool
}

func newStream(events <-chan streamEvent, cancel func()) *Stream {
	return &Stream{events: events, cancel: cancel}
}

// Next returns the next Message, or io.EOF once the stream is exhausted.
func (s *Stream) Next() (*Message, error) {
	ev, ok := <-s.events
	if !ok || ev.end {
		return nil, io.EOF
	}
	if ev.err != nil {
		return nil, ev.err
	}
	return &ev.msg, nil
}

// Close releases any resources backing the stream and stops production of
// further messages — used when the session's cancellation handle fires.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
