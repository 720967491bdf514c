package observability

import "context"

// MultiObserver fans out events to multiple observers, typically a log
// observer alongside a recording or metrics one.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver composes observers into one. Nil entries are
// skipped and nested MultiObservers are flattened, so composing
// compositions never stacks indirection.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	flat := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		switch o := obs.(type) {
		case nil:
			continue
		case *MultiObserver:
			flat = append(flat, o.observers...)
		default:
			flat = append(flat, o)
		}
	}
	return &MultiObserver{observers: flat}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
