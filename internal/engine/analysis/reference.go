package analysis

import "fmt"

// ReferenceKind is the type of a dependency edge.
type ReferenceKind int

const (
	SubclassOf ReferenceKind = iota
	NestedIn
	Includes
	BelongsTo
	HasMany
)

var referenceKindNames = [...]string{
	SubclassOf: "subclass_of",
	NestedIn:   "nested_in",
	Includes:   "includes",
	BelongsTo:  "belongs_to",
	HasMany:    "has_many",
}

// AllReferenceKinds lists every kind in declaration order.
func AllReferenceKinds() []ReferenceKind {
	return []ReferenceKind{SubclassOf, NestedIn, Includes, BelongsTo, HasMany}
}

// String returns the lowercase tag used in logs and fixtures.
func (k ReferenceKind) String() string {
	if k < 0 || int(k) >= len(referenceKindNames) {
		return fmt.Sprintf("reference_kind(%d)", int(k))
	}
	return referenceKindNames[k]
}

// MarshalText lets encoders write kinds by tag name.
func (k ReferenceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseReferenceKind is the inverse of String.
func ParseReferenceKind(tag string) (ReferenceKind, bool) {
	for i, name := range referenceKindNames {
		if name == tag {
			return ReferenceKind(i), true
		}
	}
	return 0, false
}

// Reference is a directed, typed edge between two identifier strings.
// Targets are not resolved; they may name types never defined in the tree.
type Reference struct {
	From string        `yaml:"from"`
	To   string        `yaml:"to"`
	Kind ReferenceKind `yaml:"kind"`
}

func (r Reference) String() string {
	return fmt.Sprintf("%s → %s [%s]", r.From, r.To, r.Kind)
}
