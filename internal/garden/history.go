package garden

import "encoding/json"

// Capacity fixes the size of a History at the type level, so every value of
// the history type (including ones produced by decoding) shares the bound.
type Capacity interface {
	Cap() int
}

// FlowerLanguageCap bounds a plant's flower-language history.
type FlowerLanguageCap struct{}

func (FlowerLanguageCap) Cap() int { return 50 }

// CollectionCap bounds the learned knowledge collection.
type CollectionCap struct{}

func (CollectionCap) Cap() int { return 100 }

// CheckInCap bounds the check-in history.
type CheckInCap struct{}

func (CheckInCap) Cap() int { return 10 }

// History is a fixed-capacity deque ordered newest first. Push inserts at the
// head and drops from the tail once the capacity is reached.
//
// The zero value is an empty history. An empty history always holds a nil
// slice so decoded and freshly built snapshots compare equal.
type History[T any, C Capacity] struct {
	items []T
}

// NewHistory builds a history from items given newest first, keeping at most
// the capacity.
func NewHistory[T any, C Capacity](items ...T) History[T, C] {
	var h History[T, C]
	h.set(items)
	return h
}

// Capacity returns the maximum number of items.
func (h History[T, C]) Capacity() int {
	var c C
	return c.Cap()
}

// Len returns the number of items held.
func (h History[T, C]) Len() int {
	return len(h.items)
}

// Push prepends v, evicting the oldest item when full.
func (h *History[T, C]) Push(v T) {
	limit := h.Capacity()
	if limit <= 0 {
		return
	}
	if h.items == nil {
		h.items = make([]T, 0, limit)
	}
	if len(h.items) < limit {
		h.items = append(h.items, v)
	}
	// Shift right by one, dropping the tail if we were already full.
	copy(h.items[1:], h.items[:len(h.items)-1])
	h.items[0] = v
}

// Items returns a copy of the items, newest first.
func (h History[T, C]) Items() []T {
	if len(h.items) == 0 {
		return nil
	}
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}

// At returns the i-th newest item.
func (h History[T, C]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(h.items) {
		return zero, false
	}
	return h.items[i], true
}

// Clone returns an independent copy.
func (h History[T, C]) Clone() History[T, C] {
	return History[T, C]{items: h.Items()}
}

func (h *History[T, C]) set(items []T) {
	if limit := h.Capacity(); len(items) > limit {
		items = items[:limit]
	}
	if len(items) == 0 {
		h.items = nil
		return
	}
	h.items = make([]T, len(items), h.Capacity())
	copy(h.items, items)
}

// MarshalJSON encodes the history as a JSON array, newest first. An empty
// history encodes as [] rather than null.
func (h History[T, C]) MarshalJSON() ([]byte, error) {
	if len(h.items) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(h.items)
}

// UnmarshalJSON decodes a JSON array, truncating to the capacity.
func (h *History[T, C]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	h.set(items)
	return nil
}
