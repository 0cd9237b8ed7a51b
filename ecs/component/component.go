package component

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

type ComponentID uint32

var (
	nextComponentID atomic.Uint32
	kindNames       sync.Map // ComponentID -> string
)

// ComponentKind identifies one component store. Two kinds of the same Go
// type are distinct stores.
type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	id := ComponentID(nextComponentID.Add(1))
	kindNames.Store(id, reflect.TypeFor[T]().String())
	return ComponentKind[T]{id: id}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) String() string {
	return KindName(k.id)
}

// KindName is the Go type name a kind was registered with.
func KindName(id ComponentID) string {
	if v, ok := kindNames.Load(id); ok {
		return v.(string)
	}
	return "<invalid>"
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
