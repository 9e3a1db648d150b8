package analysis

// NamespaceKind distinguishes class from module definitions.
type NamespaceKind int

const (
	KindClass NamespaceKind = iota
	KindModule
)

func (k NamespaceKind) String() string {
	if k == KindModule {
		return "module"
	}
	return "class"
}

func (k NamespaceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// NoEnclosing marks a top-level namespace.
const NoEnclosing = -1

// Namespace is one class or module definition site.
//
// Identifier is qualified with the immediately enclosing namespace's
// LocalName only, so deep nesting keeps two segments at most from nesting
// (Outer::Mid::Inner is recorded as Mid::Inner).
type Namespace struct {
	Kind           NamespaceKind `yaml:"kind"`
	Identifier     string        `yaml:"identifier"`
	LocalName      string        `yaml:"local_name"`
	DeclaredParent string        `yaml:"declared_parent,omitempty"`
	File           string        `yaml:"file"`
	// Enclosing indexes Result.Namespaces; NoEnclosing at file root.
	Enclosing int `yaml:"enclosing"`
}

func (n Namespace) IsNested() bool { return n.Enclosing != NoEnclosing }

func (n Namespace) IsSubclass() bool { return n.DeclaredParent != "" }

// String renders "Identifier < Parent", dropping the parent when absent.
func (n Namespace) String() string {
	if n.DeclaredParent == "" {
		return n.Identifier
	}
	return n.Identifier + " < " + n.DeclaredParent
}
