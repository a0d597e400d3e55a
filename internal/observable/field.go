// Package observable holds values that notify subscribers when they change.
package observable

import "sync"

// Field is a value with change notification. The zero value is ready to use
// and holds the zero value of T.
type Field[T comparable] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   []subscriber[T]
}

type subscriber[T comparable] struct {
	id int
	fn func(T)
}

// NewField returns a Field holding v.
func NewField[T comparable](v T) *Field[T] {
	return &Field[T]{value: v}
}

// Get returns the current value.
func (f *Field[T]) Get() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Set stores v. Subscribers are called in subscription order, outside the
// lock, only when v differs from the current value.
func (f *Field[T]) Set(v T) {
	f.mu.Lock()
	if f.value == v {
		f.mu.Unlock()
		return
	}
	f.value = v
	subs := make([]subscriber[T], len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Subscribe registers fn for future changes and returns a func that removes it.
func (f *Field[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}
