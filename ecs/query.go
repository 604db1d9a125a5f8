package ecs

// The typed views below bind up to four required tables, in declaration order, to a View.
// GetN and RemoveN act on the Nth required table for an entity taken from the view's
// result, so a system can read, mutate or remove the matching component without a second
// membership lookup. Removing through RemoveN while ranging over Entities is supported:
// it changes the table, not the slice being walked.

// View1 is a View over one required table.
type View1[A any] struct {
	*View
	t1 SoftTable[A]
}

// NewView1 creates a typed view requiring A.
func NewView1[A any](storage *Storage, opts ...ViewOption) *View1[A] {
	v := &View1[A]{
		t1: SoftTableOf[A](storage),
	}
	v.View = NewView(storage, []ComponentID{v.t1.id}, opts...)
	return v
}

// Init binds the view to storage, keeping any exclusions and the structural-change mode
// it was created with. The scheduler calls it for View1 fields of systems.
func (v *View1[A]) Init(storage *Storage) {
	var opts []ViewOption
	if v.View != nil {
		opts = v.options()
		v.Release()
	}
	*v = *NewView1[A](storage, opts...)
}

// Get1 returns e's A. e must come from the view's current result.
func (v *View1[A]) Get1(e Entity) *A {
	return v.t1.Get().Value(e)
}

// Remove1 drops e's A, reporting whether it was present.
func (v *View1[A]) Remove1(e Entity) bool {
	t := v.t1.Get()
	return t != nil && t.Remove(e)
}

// Table1 returns the A table, creating it if needed.
func (v *View1[A]) Table1() *ComponentTable[A] {
	return v.t1.Force()
}

// View2 is a View over 2 required tables.
type View2[A, B any] struct {
	*View
	t1 SoftTable[A]
	t2 SoftTable[B]
}

// NewView2 creates a typed view requiring A, B.
func NewView2[A, B any](storage *Storage, opts ...ViewOption) *View2[A, B] {
	v := &View2[A, B]{
		t1: SoftTableOf[A](storage),
		t2: SoftTableOf[B](storage),
	}
	v.View = NewView(storage, []ComponentID{v.t1.id, v.t2.id}, opts...)
	return v
}

// Init binds the view to storage, keeping any exclusions and the structural-change mode
// it was created with. The scheduler calls it for View2 fields of systems.
func (v *View2[A, B]) Init(storage *Storage) {
	var opts []ViewOption
	if v.View != nil {
		opts = v.options()
		v.Release()
	}
	*v = *NewView2[A, B](storage, opts...)
}

// Get1 returns e's A. e must come from the view's current result.
func (v *View2[A, B]) Get1(e Entity) *A {
	return v.t1.Get().Value(e)
}

// Remove1 drops e's A, reporting whether it was present.
func (v *View2[A, B]) Remove1(e Entity) bool {
	t := v.t1.Get()
	return t != nil && t.Remove(e)
}

// Table1 returns the A table, creating it if needed.
func (v *View2[A, B]) Table1() *ComponentTable[A] {
	return v.t1.Force()
}

// Get2 returns e's B. e must come from the view's current result.
func (v *View2[A, B]) Get2(e Entity) *B {
	return v.t2.Get().Value(e)
}

// Remove2 drops e's B, reporting whether it was present.
func (v *View2[A, B]) Remove2(e Entity) bool {
	t := v.t2.Get()
	return t != nil && t.Remove(e)
}

// Table2 returns the B table, creating it if needed.
func (v *View2[A, B]) Table2() *ComponentTable[B] {
	return v.t2.Force()
}

// View3 is a View over 3 required tables.
type View3[A, B, C any] struct {
	*View
	t1 SoftTable[A]
	t2 SoftTable[B]
	t3 SoftTable[C]
}

// NewView3 creates a typed view requiring A, B, C.
func NewView3[A, B, C any](storage *Storage, opts ...ViewOption) *View3[A, B, C] {
	v := &View3[A, B, C]{
		t1: SoftTableOf[A](storage),
		t2: SoftTableOf[B](storage),
		t3: SoftTableOf[C](storage),
	}
	v.View = NewView(storage, []ComponentID{v.t1.id, v.t2.id, v.t3.id}, opts...)
	return v
}

// Init binds the view to storage, keeping any exclusions and the structural-change mode
// it was created with. The scheduler calls it for View3 fields of systems.
func (v *View3[A, B, C]) Init(storage *Storage) {
	var opts []ViewOption
	if v.View != nil {
		opts = v.options()
		v.Release()
	}
	*v = *NewView3[A, B, C](storage, opts...)
}

// Get1 returns e's A. e must come from the view's current result.
func (v *View3[A, B, C]) Get1(e Entity) *A {
	return v.t1.Get().Value(e)
}

// Remove1 drops e's A, reporting whether it was present.
func (v *View3[A, B, C]) Remove1(e Entity) bool {
	t := v.t1.Get()
	return t != nil && t.Remove(e)
}

// Table1 returns the A table, creating it if needed.
func (v *View3[A, B, C]) Table1() *ComponentTable[A] {
	return v.t1.Force()
}

// Get2 returns e's B. e must come from the view's current result.
func (v *View3[A, B, C]) Get2(e Entity) *B {
	return v.t2.Get().Value(e)
}

// Remove2 drops e's B, reporting whether it was present.
func (v *View3[A, B, C]) Remove2(e Entity) bool {
	t := v.t2.Get()
	return t != nil && t.Remove(e)
}

// Table2 returns the B table, creating it if needed.
func (v *View3[A, B, C]) Table2() *ComponentTable[B] {
	return v.t2.Force()
}

// Get3 returns e's C. e must come from the view's current result.
func (v *View3[A, B, C]) Get3(e Entity) *C {
	return v.t3.Get().Value(e)
}

// Remove3 drops e's C, reporting whether it was present.
func (v *View3[A, B, C]) Remove3(e Entity) bool {
	t := v.t3.Get()
	return t != nil && t.Remove(e)
}

// Table3 returns the C table, creating it if needed.
func (v *View3[A, B, C]) Table3() *ComponentTable[C] {
	return v.t3.Force()
}

// View4 is a View over 4 required tables.
type View4[A, B, C, D any] struct {
	*View
	t1 SoftTable[A]
	t2 SoftTable[B]
	t3 SoftTable[C]
	t4 SoftTable[D]
}

// NewView4 creates a typed view requiring A, B, C, D.
func NewView4[A, B, C, D any](storage *Storage, opts ...ViewOption) *View4[A, B, C, D] {
	v := &View4[A, B, C, D]{
		t1: SoftTableOf[A](storage),
		t2: SoftTableOf[B](storage),
		t3: SoftTableOf[C](storage),
		t4: SoftTableOf[D](storage),
	}
	v.View = NewView(storage, []ComponentID{v.t1.id, v.t2.id, v.t3.id, v.t4.id}, opts...)
	return v
}

// Init binds the view to storage, keeping any exclusions and the structural-change mode
// it was created with. The scheduler calls it for View4 fields of systems.
func (v *View4[A, B, C, D]) Init(storage *Storage) {
	var opts []ViewOption
	if v.View != nil {
		opts = v.options()
		v.Release()
	}
	*v = *NewView4[A, B, C, D](storage, opts...)
}

// Get1 returns e's A. e must come from the view's current result.
func (v *View4[A, B, C, D]) Get1(e Entity) *A {
	return v.t1.Get().Value(e)
}

// Remove1 drops e's A, reporting whether it was present.
func (v *View4[A, B, C, D]) Remove1(e Entity) bool {
	t := v.t1.Get()
	return t != nil && t.Remove(e)
}

// Table1 returns the A table, creating it if needed.
func (v *View4[A, B, C, D]) Table1() *ComponentTable[A] {
	return v.t1.Force()
}

// Get2 returns e's B. e must come from the view's current result.
func (v *View4[A, B, C, D]) Get2(e Entity) *B {
	return v.t2.Get().Value(e)
}

// Remove2 drops e's B, reporting whether it was present.
func (v *View4[A, B, C, D]) Remove2(e Entity) bool {
	t := v.t2.Get()
	return t != nil && t.Remove(e)
}

// Table2 returns the B table, creating it if needed.
func (v *View4[A, B, C, D]) Table2() *ComponentTable[B] {
	return v.t2.Force()
}

// Get3 returns e's C. e must come from the view's current result.
func (v *View4[A, B, C, D]) Get3(e Entity) *C {
	return v.t3.Get().Value(e)
}

// Remove3 drops e's C, reporting whether it was present.
func (v *View4[A, B, C, D]) Remove3(e Entity) bool {
	t := v.t3.Get()
	return t != nil && t.Remove(e)
}

// Table3 returns the C table, creating it if needed.
func (v *View4[A, B, C, D]) Table3() *ComponentTable[C] {
	return v.t3.Force()
}

// Get4 returns e's D. e must come from the view's current result.
func (v *View4[A, B, C, D]) Get4(e Entity) *D {
	return v.t4.Get().Value(e)
}

// Remove4 drops e's D, reporting whether it was present.
func (v *View4[A, B, C, D]) Remove4(e Entity) bool {
	t := v.t4.Get()
	return t != nil && t.Remove(e)
}

// Table4 returns the D table, creating it if needed.
func (v *View4[A, B, C, D]) Table4() *ComponentTable[D] {
	return v.t4.Force()
}
