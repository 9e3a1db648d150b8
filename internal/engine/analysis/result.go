package analysis

// Result accumulates namespaces and references in insertion order.
// It is append-only and not safe for concurrent writers.
type Result struct {
	Namespaces []Namespace `yaml:"namespaces"`
	References []Reference `yaml:"references"`
}

func NewResult() *Result {
	return &Result{}
}

// AddNamespace appends ns and returns its index. A SubclassOf reference is
// emitted immediately for namespaces with a declared parent.
func (r *Result) AddNamespace(ns Namespace) int {
	r.Namespaces = append(r.Namespaces, ns)
	if ns.IsSubclass() {
		r.AddReference(Reference{From: ns.Identifier, To: ns.DeclaredParent, Kind: SubclassOf})
	}
	return len(r.Namespaces) - 1
}

func (r *Result) AddReference(ref Reference) {
	r.References = append(r.References, ref)
}

// Namespace returns the namespace at idx.
func (r *Result) Namespace(idx int) (Namespace, bool) {
	if idx < 0 || idx >= len(r.Namespaces) {
		return Namespace{}, false
	}
	return r.Namespaces[idx], true
}

// Enclosing resolves the enclosing namespace of ns, if any.
func (r *Result) Enclosing(ns Namespace) (Namespace, bool) {
	return r.Namespace(ns.Enclosing)
}

// Strings renders every reference with Reference.String.
func (r *Result) Strings() []string {
	out := make([]string, 0, len(r.References))
	for _, ref := range r.References {
		out = append(out, ref.String())
	}
	return out
}

// CountByKind tallies references per kind.
func (r *Result) CountByKind() map[ReferenceKind]int {
	counts := make(map[ReferenceKind]int, len(referenceKindNames))
	for _, ref := range r.References {
		counts[ref.Kind]++
	}
	return counts
}

// Files returns the distinct files that contributed namespaces, in first-seen order.
func (r *Result) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, ns := range r.Namespaces {
		if seen[ns.File] {
			continue
		}
		seen[ns.File] = true
		files = append(files, ns.File)
	}
	return files
}
