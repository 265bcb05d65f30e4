package adapter

// SliceStream is a ChunkStream over a fixed list of chunks held in memory.
// It lets a stub ChatStreamer answer without a network round trip.
type SliceStream struct {
	chunks []Chunk
	pos    int
	err    error
	closed bool
}

// NewSliceStream returns a stream yielding chunks in order.
func NewSliceStream(chunks ...Chunk) *SliceStream {
	return &SliceStream{chunks: chunks, pos: -1}
}

// WithErr makes the stream report err once the chunks are exhausted.
func (s *SliceStream) WithErr(err error) *SliceStream {
	s.err = err
	return s
}

func (s *SliceStream) Next() bool {
	if s.closed || s.pos+1 >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Current() Chunk {
	if s.pos < 0 || s.pos >= len(s.chunks) {
		return Chunk{}
	}
	return s.chunks[s.pos]
}

func (s *SliceStream) Err() error {
	if s.pos+1 >= len(s.chunks) {
		return s.err
	}
	return nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool {
	return s.closed
}
