package alignedvec

// Lifecycle bundles the element-level operations for types whose
// construction, copy, move or destruction carry user-visible effects
// (owned resources, registration side effects, internal references).
// Closures that a particular container operation needs may be left nil as
// long as that operation is never invoked; calling an operation whose
// closure is missing is a programmer error and panics.
type Lifecycle[T any] struct {
	// Construct default-constructs a value.
	Construct func() T
	// Clone constructs an independent copy of *src.
	Clone func(src *T) T
	// Assign copy-assigns *src into the already-live *dst.
	Assign func(dst, src *T)
	// Move transfers *src into the raw slot *dst, leaving *src torn down.
	// When nil, Clone followed by Destroy is used instead.
	Move func(dst, src *T)
	// Destroy tears down a live value.
	Destroy func(p *T)
	// Equal reports element equality.
	Equal func(a, b *T) bool
}

// Traits selects between raw-byte and lifecycle-driven element semantics
// for a Vector. Trivial traits let bulk operations degrade to plain memory
// copies and fills; managed traits route every element through its
// Lifecycle closures.
type Traits[T any] struct {
	trivial       bool
	noZeroPattern bool
	lc            Lifecycle[T]
}

// Trivial returns traits for element types with no user-defined lifecycle:
// byte-for-byte duplication of their storage is a correct copy. The type
// must not hold pointers whose identity matters, and must be comparable so
// vectors of it can be tested for equality.
func Trivial[T comparable]() Traits[T] {
	return Traits[T]{
		trivial: true,
		lc: Lifecycle[T]{
			Equal: func(a, b *T) bool { return *a == *b },
		},
	}
}

// WithoutZeroPattern disables the all-zero-byte fill shortcut for this
// element type. Required for trivial types whose zero bit pattern is not
// guaranteed to span the full storage width on every platform, such as
// structs with interior padding.
func (tr Traits[T]) WithoutZeroPattern() Traits[T] {
	tr.noZeroPattern = true
	return tr
}

// Managed returns traits that drive every element operation through the
// given lifecycle. Construct and Destroy are mandatory; the remaining
// closures unlock the operations that need them.
func Managed[T any](lc Lifecycle[T]) Traits[T] {
	if lc.Construct == nil {
		panic("alignedvec: managed traits require a Construct closure")
	}
	if lc.Destroy == nil {
		panic("alignedvec: managed traits require a Destroy closure")
	}
	return Traits[T]{lc: lc}
}

// Capability accessors. A nil closure means the element type does not
// support the requested operation; the call fails fast at the call site
// instead of corrupting element state.

func (tr Traits[T]) needClone() func(src *T) T {
	if tr.lc.Clone == nil {
		panic("alignedvec: element traits lack Clone (copy construction)")
	}
	return tr.lc.Clone
}

func (tr Traits[T]) needAssign() func(dst, src *T) {
	if tr.lc.Assign == nil {
		panic("alignedvec: element traits lack Assign (copy assignment)")
	}
	return tr.lc.Assign
}

func (tr Traits[T]) needConstruct() func() T {
	if tr.lc.Construct == nil {
		panic("alignedvec: element traits lack Construct (default construction)")
	}
	return tr.lc.Construct
}

func (tr Traits[T]) needEqual() func(a, b *T) bool {
	if tr.lc.Equal == nil {
		panic("alignedvec: element traits lack Equal (element comparison)")
	}
	return tr.lc.Equal
}

// moveInto resolves the move operation, falling back to clone-then-destroy.
func (tr Traits[T]) moveInto() func(dst, src *T) {
	if tr.lc.Move != nil {
		return tr.lc.Move
	}
	clone := tr.needClone()
	destroy := tr.lc.Destroy
	return func(dst, src *T) {
		*dst = clone(src)
		destroy(src)
	}
}
