package entity

// InitKind classifies how a property's value comes to exist.
type InitKind int

const (
	// Explicit properties must be supplied at AddEntity time; reading
	// one that was never set panics with simerr.PropertyNotSetPanic.
	Explicit InitKind = iota
	// Constant properties have a process-wide default and need not be
	// supplied at AddEntity time.
	Constant
	// Derived properties are computed from other properties and can
	// never be the target of SetProperty.
	Derived
)

// Descriptor is the capability vtable for one property of one entity
// type: an arena-addressed record, never boxed per-entity. Canonicalize
// and HashCanonical together define the index bucket key: two values
// that canonicalize equal always hash equal.
type Descriptor struct {
	EntityType string
	Name       string
	Kind       InitKind

	// Default supplies the value for a Constant property that was
	// never explicitly set. Ignored for Explicit/Derived.
	Default any

	// Deps names the properties (of the same entity type) a Derived
	// property reads during Compute. Ignored for Explicit/Constant.
	Deps []string

	// Compute produces a Derived property's value from its current
	// dependency values, supplied in the same order as Deps.
	Compute func(deps []any) any

	// Canonicalize maps a value to its canonical form for indexing and
	// equality comparison. Defaults to the identity function.
	Canonicalize func(v any) any

	// HashCanonical hashes a canonical value into a bucket key.
	// Defaults to hashAny, which hashes the value's fmt "%T:%v"
	// rendering; properties whose values do not format distinctly
	// should supply their own.
	HashCanonical func(cv any) uint64

	indexed bool
}

func identityCanonicalize(v any) any { return v }

func defaultHash(cv any) uint64 {
	return hashAny(cv)
}

func newDescriptor(entityType, name string, kind InitKind) *Descriptor {
	return &Descriptor{
		EntityType:    entityType,
		Name:          name,
		Kind:          kind,
		Canonicalize:  identityCanonicalize,
		HashCanonical: defaultHash,
	}
}
