package croppost

type patchState uint8

const (
	patchKeep patchState = iota
	patchSet
	patchClear
)

// Patch is one field of a partial update: left unchanged (the zero value),
// set to a new value, or cleared to NULL.
type Patch[T any] struct {
	state patchState
	value T
}

func Set[T any](v T) Patch[T] {
	return Patch[T]{state: patchSet, value: v}
}

func Clear[T any]() Patch[T] {
	return Patch[T]{state: patchClear}
}

func (p Patch[T]) IsKeep() bool  { return p.state == patchKeep }
func (p Patch[T]) IsSet() bool   { return p.state == patchSet }
func (p Patch[T]) IsClear() bool { return p.state == patchClear }

// Value returns the new value and true when the field is being set.
func (p Patch[T]) Value() (T, bool) {
	return p.value, p.state == patchSet
}
