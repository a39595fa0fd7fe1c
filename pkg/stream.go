package lheutils

import "github.com/next-exp/lheutils/lhef"

// EventStream is the pull iteration surface shared by decoders, merges and
// transforms. Next advances to the next event; once it returns false, Err
// reports whether the stream ended cleanly or failed.
type EventStream interface {
	Next() bool
	Event() *lhef.Event
	Err() error
}

// Transform rewrites one event in place. Returning keep=false drops the
// event from the stream.
type Transform func(ev *lhef.Event) (keep bool, err error)

// AppendWeight copies the central event weight into the alternate weight id.
// It pairs with the init entry created by AddWeight.
func AppendWeight(id string) Transform {
	return func(ev *lhef.Event) (bool, error) {
		ev.SetWeight(id, ev.EventInfo.Weight)
		return true, nil
	}
}

// RestrictWeight promotes the alternate weight id to the central weight and
// discards all other weights. Events that do not carry the id are dropped.
func RestrictWeight(id string) Transform {
	return func(ev *lhef.Event) (bool, error) {
		v, ok := ev.Weight(id)
		if !ok {
			return false, nil
		}
		ev.EventInfo.Weight = v
		ev.Weights = []lhef.Weight{{ID: id, Value: v}}
		return true, nil
	}
}

// TransformStream applies transforms in order to every event of src.
type TransformStream struct {
	src        EventStream
	transforms []Transform
	evt        *lhef.Event
	err        error
}

func NewTransformStream(src EventStream, transforms ...Transform) *TransformStream {
	return &TransformStream{src: src, transforms: transforms}
}

func (s *TransformStream) Next() bool {
	if s.err != nil {
		return false
	}
next:
	for s.src.Next() {
		ev := s.src.Event()
		for _, t := range s.transforms {
			keep, err := t(ev)
			if err != nil {
				s.err = err
				return false
			}
			if !keep {
				continue next
			}
		}
		s.evt = ev
		return true
	}
	return false
}

func (s *TransformStream) Event() *lhef.Event {
	return s.evt
}

func (s *TransformStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.src.Err()
}

// Limit caps src at n events. A non-positive n means no limit.
func Limit(src EventStream, n int) EventStream {
	if n <= 0 {
		return src
	}
	return &boundedStream{src: src, limit: n}
}

// SliceStream serves events from memory. Conversions and tests use it where
// no file backs the stream.
type SliceStream struct {
	events []*lhef.Event
	i      int
}

func NewSliceStream(events ...*lhef.Event) *SliceStream {
	return &SliceStream{events: events}
}

func (s *SliceStream) Next() bool {
	if s.i >= len(s.events) {
		return false
	}
	s.i++
	return true
}

func (s *SliceStream) Event() *lhef.Event {
	return s.events[s.i-1]
}

func (s *SliceStream) Err() error {
	return nil
}
