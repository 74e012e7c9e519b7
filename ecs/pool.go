package ecs

import (
	"fmt"
	"io"
	"sort"
)

// Grower allocates backing storage for a pool's packed component slice.
// Implementations in the mem package back pools with the TLSF or arena
// allocators; the default (nil) grows through the Go runtime.
type Grower[T any] interface {
	// Grow returns a slice with the same contents and length as old and a
	// capacity of at least newCap. Grow may reuse or release old's memory.
	Grow(old []T, newCap int) []T
}

// Pool is a sparse-set store for all components of one type.
//
// Three parallel structures: sparse maps entity index to a dense position
// (or tombstone), dense holds the owning entities (in insertion order until
// a remove, swap or sort reorders them), and packed holds the component values so that packed[i] belongs to dense[i].
type Pool[T any] struct {
	id     TypeID
	sparse []uint32
	dense  []Entity
	packed []T
	grower Grower[T]
}

// NewPool creates an empty pool for T.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{id: TypeOf[T]()}
}

// NewPoolWith creates an empty pool whose packed slice grows through g.
func NewPoolWith[T any](g Grower[T]) *Pool[T] {
	return &Pool[T]{id: TypeOf[T](), grower: g}
}

// Len returns the number of components in the pool.
func (p *Pool[T]) Len() int {
	return len(p.dense)
}

// Reserve grows the dense and packed slices up front to hold n components.
// The sparse array is not grown.
func (p *Pool[T]) Reserve(n int) {
	if cap(p.dense) < n {
		dense := make([]Entity, len(p.dense), n)
		copy(dense, p.dense)
		p.dense = dense

		p.packed = p.growPacked(n)
	}
}

// Contains reports whether e currently has a component in this pool. The
// generation half of the handle participates in the check, so a stale handle
// to a recycled slot reports false.
func (p *Pool[T]) Contains(e Entity) bool {
	idx := e.Index()
	if int(idx) >= len(p.sparse) {
		return false
	}
	s := p.sparse[idx]
	return int(s) < len(p.dense) && p.dense[s] == e
}

// Emplace adds a component for e at the dense tail. The caller must ensure e
// is not already present; Emplace on a present entity corrupts the set and
// panics when it can detect it.
func (p *Pool[T]) Emplace(e Entity, v T) *T {
	idx := e.Index()
	if p.Contains(e) {
		panic(fmt.Sprintf("ecs: duplicate add of %s for entity %s", TypeName(p.id), e))
	}
	if int(idx) >= len(p.sparse) {
		p.resizeSparse(int(idx) + 1)
	}

	p.sparse[idx] = uint32(len(p.dense))
	p.dense = append(p.dense, e)
	if p.grower != nil && len(p.packed) == cap(p.packed) {
		newCap := 2 * cap(p.packed)
		if newCap < 8 {
			newCap = 8
		}
		p.packed = p.growPacked(newCap)
	}
	p.packed = append(p.packed, v)
	return &p.packed[len(p.packed)-1]
}

// Get returns a pointer to e's component. It panics on a stale or absent
// handle. The pointer is valid only until the next add or remove on this
// pool.
func (p *Pool[T]) Get(e Entity) *T {
	idx := e.Index()
	if int(idx) >= len(p.sparse) {
		panic(fmt.Sprintf("ecs: get of %s by invalid entity %s", TypeName(p.id), e))
	}
	s := p.sparse[idx]
	if int(s) >= len(p.dense) {
		panic(fmt.Sprintf("ecs: get of %s by invalid entity %s", TypeName(p.id), e))
	}
	if p.dense[s] != e {
		panic(fmt.Sprintf("ecs: get of %s by stale entity %s", TypeName(p.id), e))
	}
	return &p.packed[s]
}

// TryGet returns a pointer to e's component, or nil and false when absent.
func (p *Pool[T]) TryGet(e Entity) (*T, bool) {
	if !p.Contains(e) {
		return nil, false
	}
	return &p.packed[p.sparse[e.Index()]], true
}

// Remove deletes e's component by swapping the dense tail into its place.
// Returns false when e is absent. Dense order is not preserved.
func (p *Pool[T]) Remove(e Entity) bool {
	if !p.Contains(e) {
		return false
	}

	idx := e.Index()
	i := p.sparse[idx]
	last := len(p.dense) - 1

	moved := p.dense[last]
	p.dense[i] = moved
	p.packed[i] = p.packed[last]
	p.sparse[moved.Index()] = i

	var zero T
	p.packed[last] = zero
	p.dense = p.dense[:last]
	p.packed = p.packed[:last]
	p.sparse[idx] = tombstone
	return true
}

// Swap exchanges the dense positions of two present entities, keeping
// dense, packed and sparse coherent. No-op if either is absent.
func (p *Pool[T]) Swap(a, b Entity) {
	if a == b || !p.Contains(a) || !p.Contains(b) {
		return
	}
	p.swapAt(int(p.sparse[a.Index()]), int(p.sparse[b.Index()]))
}

// Sort reorders the pool so that less defines the packed order, then repairs
// dense and sparse to match. The registry refuses to sort a grouped pool;
// calling this directly on one breaks the group's prefix.
func (p *Pool[T]) Sort(less func(a, b T) bool) {
	n := len(p.dense)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return less(p.packed[perm[i]], p.packed[perm[j]])
	})

	// Apply the permutation in place, one cycle at a time.
	for start := 0; start < n; start++ {
		if perm[start] == start {
			continue
		}
		i := start
		tmpV := p.packed[start]
		tmpE := p.dense[start]
		for perm[i] != start {
			next := perm[i]
			p.packed[i] = p.packed[next]
			p.dense[i] = p.dense[next]
			perm[i] = i
			i = next
		}
		p.packed[i] = tmpV
		p.dense[i] = tmpE
		perm[i] = i
	}

	for i, e := range p.dense {
		p.sparse[e.Index()] = uint32(i)
	}
}

// Each calls fn once per component in dense order.
func (p *Pool[T]) Each(fn func(*T)) {
	for i := range p.packed {
		fn(&p.packed[i])
	}
}

// EachEntity calls fn once per (entity, component) pair in dense order.
func (p *Pool[T]) EachEntity(fn func(Entity, *T)) {
	for i := range p.packed {
		fn(p.dense[i], &p.packed[i])
	}
}

// Clear removes every component. Sparse slots become tombstones.
func (p *Pool[T]) Clear() {
	for i := range p.sparse {
		p.sparse[i] = tombstone
	}
	var zero T
	for i := range p.packed {
		p.packed[i] = zero
	}
	p.dense = p.dense[:0]
	p.packed = p.packed[:0]
}

// Entities returns the dense entity slice. Read-only; shared with the pool.
func (p *Pool[T]) Entities() []Entity {
	return p.dense
}

// Raw returns the packed component slice for stride-1 access. Shared with
// the pool; valid only until the next add or remove.
func (p *Pool[T]) Raw() []T {
	return p.packed
}

func (p *Pool[T]) resizeSparse(n int) {
	for len(p.sparse) < n {
		p.sparse = append(p.sparse, tombstone)
	}
}

func (p *Pool[T]) growPacked(newCap int) []T {
	if p.grower != nil {
		return p.grower.Grow(p.packed, newCap)
	}
	packed := make([]T, len(p.packed), newCap)
	copy(packed, p.packed)
	return packed
}

// store interface (type-erased face used by the registry).

func (p *Pool[T]) removeErased(e Entity) bool   { return p.Remove(e) }
func (p *Pool[T]) containsErased(e Entity) bool { return p.Contains(e) }
func (p *Pool[T]) clear()                       { p.Clear() }
func (p *Pool[T]) size() int                    { return len(p.dense) }
func (p *Pool[T]) typeID() TypeID               { return p.id }

func (p *Pool[T]) swapAt(i, j int) {
	if i == j {
		return
	}
	p.dense[i], p.dense[j] = p.dense[j], p.dense[i]
	p.packed[i], p.packed[j] = p.packed[j], p.packed[i]
	p.sparse[p.dense[i].Index()] = uint32(i)
	p.sparse[p.dense[j].Index()] = uint32(j)
}

func (p *Pool[T]) denseIndex(e Entity) (int, bool) {
	if !p.Contains(e) {
		return 0, false
	}
	return int(p.sparse[e.Index()]), true
}

func (p *Pool[T]) entityAt(i int) Entity {
	return p.dense[i]
}

func (p *Pool[T]) dump(w io.Writer) {
	fmt.Fprintf(w, "pool %s (%d components)\n", TypeName(p.id), len(p.dense))
	fmt.Fprintf(w, "  sparse:\n")
	for i, s := range p.sparse {
		if s == tombstone {
			fmt.Fprintf(w, "    %d: -\n", i)
			continue
		}
		fmt.Fprintf(w, "    %d: %d\n", i, s)
	}
	fmt.Fprintf(w, "  dense:\n")
	for i, e := range p.dense {
		fmt.Fprintf(w, "    %d: %s\n", i, e)
	}
}
