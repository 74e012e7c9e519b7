package ecs

import "io"

// tombstone marks an empty slot in a pool's sparse array.
const tombstone = ^uint32(0)

// store is the type-erased face of a Pool. The registry holds every pool
// through this interface for bulk operations (destroy, clear, dump); typed
// access never crosses it.
type store interface {
	removeErased(e Entity) bool
	containsErased(e Entity) bool
	clear()
	size() int
	typeID() TypeID
	dump(w io.Writer)

	// Group maintenance. swapAt exchanges two dense positions; denseIndex
	// reports an entity's dense position; entityAt reads the dense array.
	swapAt(i, j int)
	denseIndex(e Entity) (int, bool)
	entityAt(i int) Entity
}
