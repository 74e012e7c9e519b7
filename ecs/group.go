package ecs

// A group maintains a prefix of jointly-present entities at the front of
// every involved pool: for each i < Size(), the same entity sits at dense
// position i in all of them. Iteration is stride-1 over the packed arrays
// with no per-element membership check.
//
// While a group is live it alone may reorder its pools: the registry rejects
// SortOf for watched types, and no two live groups may share a component
// type.

// Group2 owns the prefix over the pools of A and B.
type Group2[A, B any] struct {
	r      *Registry
	a      *Pool[A]
	b      *Pool[B]
	stores []store
	ids    []TypeID
	n      int
}

// NewGroup2 builds a group over A and B. Returns (nil, false) when A or B is
// already watched by a live group. The matching entities are moved to the
// front of both pools.
func NewGroup2[A, B any](r *Registry) (*Group2[A, B], bool) {
	g := &Group2[A, B]{r: r, a: PoolOf[A](r), b: PoolOf[B](r)}
	g.stores = []store{g.a, g.b}
	g.ids = []TypeID{g.a.id, g.b.id}
	if !r.registerGroup(g.ids, g) {
		return nil, false
	}
	buildPrefix(g.stores, &g.n)
	return g, true
}

// Size returns the number of entities in the group.
func (g *Group2[A, B]) Size() int {
	return g.n
}

// Each calls fn once per grouped entity, stride-1 over both packed arrays.
func (g *Group2[A, B]) Each(fn func(*A, *B)) {
	for i := 0; i < g.n; i++ {
		fn(&g.a.packed[i], &g.b.packed[i])
	}
}

// EachEntity is Each with the entity as the leading argument.
func (g *Group2[A, B]) EachEntity(fn func(Entity, *A, *B)) {
	for i := 0; i < g.n; i++ {
		fn(g.a.dense[i], &g.a.packed[i], &g.b.packed[i])
	}
}

// Release detaches the group from the registry. The pools keep their current
// order; the prefix is simply no longer maintained.
func (g *Group2[A, B]) Release() {
	g.r.unregisterGroup(g.ids)
	g.n = 0
}

func (g *Group2[A, B]) handleAdd(e Entity)    { groupAdd(g.stores, &g.n, e) }
func (g *Group2[A, B]) handleRemove(e Entity) { groupRemove(g.stores, &g.n, e) }
func (g *Group2[A, B]) handleClear()          { g.n = 0 }

// Group3 owns the prefix over the pools of A, B and C.
type Group3[A, B, C any] struct {
	r      *Registry
	a      *Pool[A]
	b      *Pool[B]
	c      *Pool[C]
	stores []store
	ids    []TypeID
	n      int
}

// NewGroup3 builds a group over A, B and C. Returns (nil, false) when any of
// the three is already watched by a live group.
func NewGroup3[A, B, C any](r *Registry) (*Group3[A, B, C], bool) {
	g := &Group3[A, B, C]{r: r, a: PoolOf[A](r), b: PoolOf[B](r), c: PoolOf[C](r)}
	g.stores = []store{g.a, g.b, g.c}
	g.ids = []TypeID{g.a.id, g.b.id, g.c.id}
	if !r.registerGroup(g.ids, g) {
		return nil, false
	}
	buildPrefix(g.stores, &g.n)
	return g, true
}

// Size returns the number of entities in the group.
func (g *Group3[A, B, C]) Size() int {
	return g.n
}

// Each calls fn once per grouped entity, stride-1 over the packed arrays.
func (g *Group3[A, B, C]) Each(fn func(*A, *B, *C)) {
	for i := 0; i < g.n; i++ {
		fn(&g.a.packed[i], &g.b.packed[i], &g.c.packed[i])
	}
}

// EachEntity is Each with the entity as the leading argument.
func (g *Group3[A, B, C]) EachEntity(fn func(Entity, *A, *B, *C)) {
	for i := 0; i < g.n; i++ {
		fn(g.a.dense[i], &g.a.packed[i], &g.b.packed[i], &g.c.packed[i])
	}
}

// Release detaches the group from the registry.
func (g *Group3[A, B, C]) Release() {
	g.r.unregisterGroup(g.ids)
	g.n = 0
}

func (g *Group3[A, B, C]) handleAdd(e Entity)    { groupAdd(g.stores, &g.n, e) }
func (g *Group3[A, B, C]) handleRemove(e Entity) { groupRemove(g.stores, &g.n, e) }
func (g *Group3[A, B, C]) handleClear()          { g.n = 0 }

// buildPrefix walks the smallest pool and places every entity present in all
// pools at the next prefix position. Placement swaps only touch positions
// that have already been visited, so a single pass suffices.
func buildPrefix(stores []store, n *int) {
	pivot := stores[0]
	for _, s := range stores[1:] {
		if s.size() < pivot.size() {
			pivot = s
		}
	}
	for i := 0; i < pivot.size(); i++ {
		e := pivot.entityAt(i)
		if inPrefix(stores, *n, e) {
			continue
		}
		if containsAll(stores, e) {
			place(stores, n, e)
		}
	}
}

// groupAdd runs after a component add on a watched type.
func groupAdd(stores []store, n *int, e Entity) {
	if !containsAll(stores, e) || inPrefix(stores, *n, e) {
		return
	}
	place(stores, n, e)
}

// groupRemove runs before a component removal on a watched type. If the
// entity is inside the prefix it is swapped with the last prefix slot so the
// upcoming removal only disturbs the suffix.
func groupRemove(stores []store, n *int, e Entity) {
	if !inPrefix(stores, *n, e) {
		return
	}
	for _, s := range stores {
		i, _ := s.denseIndex(e)
		s.swapAt(i, *n-1)
	}
	*n--
}

func containsAll(stores []store, e Entity) bool {
	for _, s := range stores {
		if !s.containsErased(e) {
			return false
		}
	}
	return true
}

// inPrefix reports whether e occupies a prefix slot. Grouped entities sit at
// the same dense index in every pool, so the first pool that holds e is
// authoritative.
func inPrefix(stores []store, n int, e Entity) bool {
	for _, s := range stores {
		if i, ok := s.denseIndex(e); ok {
			return i < n
		}
	}
	return false
}

func place(stores []store, n *int, e Entity) {
	for _, s := range stores {
		i, _ := s.denseIndex(e)
		s.swapAt(i, *n)
	}
	*n++
}
