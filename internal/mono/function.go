package mono

import (
	"ferrum/internal/types"
)

// VarDecl is a concrete variable declaration, e.g. a function parameter.
type VarDecl struct {
	Name    string
	Type    types.Type
	Scope   int // scope location of the declaration
	Mutable bool
}

// VarDeclTemplate is a declaration whose type may be generic.
type VarDeclTemplate struct {
	Label   string
	Type    Slot
	Scope   int
	Mutable bool
}

func (t *VarDeclTemplate) Name() string { return t.Label }

func (t *VarDeclTemplate) Generate(table *types.GenericsTable) (VarDecl, error) {
	return t.generate(newInstantiator(nil), table)
}

func (t *VarDeclTemplate) generate(in *instantiator, table *types.GenericsTable) (VarDecl, error) {
	ty, err := t.Type.resolve(in, table)
	if err != nil {
		return VarDecl{}, withTemplate(err, t.Label)
	}
	return VarDecl{Name: t.Label, Type: ty, Scope: t.Scope, Mutable: t.Mutable}, nil
}

// FunctionHeader is the signature of a concrete function.
type FunctionHeader struct {
	Name        string
	Namespace   types.Namespace
	Params      []VarDecl
	Return      types.Type // invalid type means no return value
	Fingerprint uint64
}

// Function is a monomorphized function. Bodies are lowered elsewhere.
type Function struct {
	Header FunctionHeader
}

// MatchesGenerics reports whether f was generated with table.
func (f *Function) MatchesGenerics(table *types.GenericsTable) bool {
	return f.Header.Fingerprint == table.Fingerprint()
}

// Ptr returns a handle identifying this instantiation.
func (f *Function) Ptr() FunctionPtr {
	return FunctionPtr{
		FunctionID:  f.Header.Namespace.Qualify(f.Header.Name),
		Fingerprint: f.Header.Fingerprint,
	}
}

// FunctionPtr identifies one instantiation of a function.
type FunctionPtr struct {
	FunctionID  string
	Fingerprint uint64
}

// FunctionTemplate describes `fn name<Generics...>(Params...) -> Return`.
// Params mix concrete declarations (*Concrete[VarDecl]) and generic ones
// (*VarDeclTemplate).
type FunctionTemplate struct {
	Label     string
	Namespace types.Namespace
	Generics  []string
	Params    []Template[VarDecl]
	Return    Slot // nil for no return value
}

func (t *FunctionTemplate) Name() string { return t.Namespace.Qualify(t.Label) }

func (t *FunctionTemplate) Generate(table *types.GenericsTable) (*Function, error) {
	return instantiate[*Function](newInstantiator(nil), t, table)
}

func (t *FunctionTemplate) generate(in *instantiator, table *types.GenericsTable) (*Function, error) {
	params := make([]VarDecl, len(t.Params))
	for i, p := range t.Params {
		decl, err := p.generate(in, table)
		if err != nil {
			return nil, withTemplate(err, t.Name())
		}
		params[i] = decl
	}
	var ret types.Type
	if t.Return != nil {
		r, err := t.Return.resolve(in, table)
		if err != nil {
			return nil, withTemplate(err, t.Name())
		}
		ret = r
	}
	return &Function{Header: FunctionHeader{
		Name:        t.Label,
		Namespace:   t.Namespace,
		Params:      params,
		Return:      ret,
		Fingerprint: table.Fingerprint(),
	}}, nil
}

// InstantiateMethod instantiates a generic method of a generic owner. The
// owner's arguments occupy the first slots, the method's own follow.
func InstantiateMethod(c *Cache, fn *FunctionTemplate, owner, own *types.GenericsTable) (*Function, error) {
	return Instantiate[*Function](c, fn, owner.Join(own))
}
