package ecs

// Views are lazy joins over two or more pools. A view borrows its pools for
// the duration of a query and carries an optional exclusion list. Iteration
// picks the smallest inclusion pool as the pivot, walks its dense array, and
// filters each entity against the other pools, so the cost is proportional
// to the smallest pool rather than the registry.
//
// Mutating non-pivot pools during Each is allowed (a removed entity is
// visited iff the pivot still references it); adding or removing the pivot's
// own component type during Each is a contract violation.

// View2 joins the pools of A and B.
type View2[A, B any] struct {
	r    *Registry
	a    *Pool[A]
	b    *Pool[B]
	excl []store
}

// NewView2 builds a view over A and B, creating pools on first use.
func NewView2[A, B any](r *Registry) *View2[A, B] {
	return &View2[A, B]{r: r, a: PoolOf[A](r), b: PoolOf[B](r)}
}

// Without adds exclusion types: entities owning any of them are skipped.
func (v *View2[A, B]) Without(ids ...TypeID) *View2[A, B] {
	v.excl = appendExcludes(v.r, v.excl, ids)
	return v
}

// Each calls fn once per entity that has both A and B and none of the
// excluded types.
func (v *View2[A, B]) Each(fn func(*A, *B)) {
	v.EachEntity(func(_ Entity, a *A, b *B) { fn(a, b) })
}

// EachEntity is Each with the entity as the leading argument.
func (v *View2[A, B]) EachEntity(fn func(Entity, *A, *B)) {
	pivot := v.a.dense
	if v.b.Len() < v.a.Len() {
		pivot = v.b.dense
	}
	for i := 0; i < len(pivot); i++ {
		e := pivot[i]
		if !v.a.Contains(e) || !v.b.Contains(e) || excluded(v.excl, e) {
			continue
		}
		fn(e, v.a.Get(e), v.b.Get(e))
	}
}

// View3 joins the pools of A, B and C.
type View3[A, B, C any] struct {
	r    *Registry
	a    *Pool[A]
	b    *Pool[B]
	c    *Pool[C]
	excl []store
}

// NewView3 builds a view over A, B and C, creating pools on first use.
func NewView3[A, B, C any](r *Registry) *View3[A, B, C] {
	return &View3[A, B, C]{r: r, a: PoolOf[A](r), b: PoolOf[B](r), c: PoolOf[C](r)}
}

// Without adds exclusion types: entities owning any of them are skipped.
func (v *View3[A, B, C]) Without(ids ...TypeID) *View3[A, B, C] {
	v.excl = appendExcludes(v.r, v.excl, ids)
	return v
}

// Each calls fn once per entity that has A, B and C and none of the
// excluded types.
func (v *View3[A, B, C]) Each(fn func(*A, *B, *C)) {
	v.EachEntity(func(_ Entity, a *A, b *B, c *C) { fn(a, b, c) })
}

// EachEntity is Each with the entity as the leading argument.
func (v *View3[A, B, C]) EachEntity(fn func(Entity, *A, *B, *C)) {
	pivot := v.a.dense
	if v.b.Len() < len(pivot) {
		pivot = v.b.dense
	}
	if v.c.Len() < len(pivot) {
		pivot = v.c.dense
	}
	for i := 0; i < len(pivot); i++ {
		e := pivot[i]
		if !v.a.Contains(e) || !v.b.Contains(e) || !v.c.Contains(e) || excluded(v.excl, e) {
			continue
		}
		fn(e, v.a.Get(e), v.b.Get(e), v.c.Get(e))
	}
}

// View4 joins the pools of A, B, C and D.
type View4[A, B, C, D any] struct {
	r    *Registry
	a    *Pool[A]
	b    *Pool[B]
	c    *Pool[C]
	d    *Pool[D]
	excl []store
}

// NewView4 builds a view over A, B, C and D, creating pools on first use.
func NewView4[A, B, C, D any](r *Registry) *View4[A, B, C, D] {
	return &View4[A, B, C, D]{
		r: r, a: PoolOf[A](r), b: PoolOf[B](r), c: PoolOf[C](r), d: PoolOf[D](r),
	}
}

// Without adds exclusion types: entities owning any of them are skipped.
func (v *View4[A, B, C, D]) Without(ids ...TypeID) *View4[A, B, C, D] {
	v.excl = appendExcludes(v.r, v.excl, ids)
	return v
}

// Each calls fn once per entity that has all four types and none of the
// excluded types.
func (v *View4[A, B, C, D]) Each(fn func(*A, *B, *C, *D)) {
	v.EachEntity(func(_ Entity, a *A, b *B, c *C, d *D) { fn(a, b, c, d) })
}

// EachEntity is Each with the entity as the leading argument.
func (v *View4[A, B, C, D]) EachEntity(fn func(Entity, *A, *B, *C, *D)) {
	pivot := v.a.dense
	if v.b.Len() < len(pivot) {
		pivot = v.b.dense
	}
	if v.c.Len() < len(pivot) {
		pivot = v.c.dense
	}
	if v.d.Len() < len(pivot) {
		pivot = v.d.dense
	}
	for i := 0; i < len(pivot); i++ {
		e := pivot[i]
		if !v.a.Contains(e) || !v.b.Contains(e) || !v.c.Contains(e) || !v.d.Contains(e) || excluded(v.excl, e) {
			continue
		}
		fn(e, v.a.Get(e), v.b.Get(e), v.c.Get(e), v.d.Get(e))
	}
}

// Each2 iterates entities that have both A and B.
func Each2[A, B any](r *Registry, fn func(Entity, *A, *B)) {
	NewView2[A, B](r).EachEntity(fn)
}

// Each3 iterates entities that have A, B and C.
func Each3[A, B, C any](r *Registry, fn func(Entity, *A, *B, *C)) {
	NewView3[A, B, C](r).EachEntity(fn)
}

func appendExcludes(r *Registry, excl []store, ids []TypeID) []store {
	for _, id := range ids {
		if s, ok := r.stores[id]; ok {
			excl = append(excl, s)
		}
	}
	return excl
}

func excluded(excl []store, e Entity) bool {
	for _, s := range excl {
		if s.containsErased(e) {
			return true
		}
	}
	return false
}
