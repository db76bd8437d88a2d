package marker

import (
	"go/ast"
	"go/token"
	"strconv"

	"markspan/internal/source"
	"markspan/internal/unit"
)

type role uint8

const (
	roleTolerant role = 1 << iota
	roleExact
	roleDirective
	rolePart
)

func (r role) names() []string {
	var out []string
	if r&roleTolerant != 0 {
		out = append(out, "tolerant assertion")
	}
	if r&roleExact != 0 {
		out = append(out, "exact assertion")
	}
	if r&roleDirective != 0 {
		out = append(out, "directive")
	}
	if r&rolePart != 0 {
		out = append(out, "part label")
	}
	return out
}

func (r role) single() bool {
	return r != 0 && r&(r-1) == 0
}

// Recognizer classifies units. It holds no per-file state and may be shared.
type Recognizer struct {
	qualifier string
	roles     map[string]role
}

// NewRecognizer builds a recognizer from names. A name listed under several
// roles is accepted here; units using it fail at classification with
// ConflictingMarkersError.
func NewRecognizer(names Names) (*Recognizer, error) {
	if err := names.Validate(); err != nil {
		return nil, err
	}
	r := &Recognizer{qualifier: names.Qualifier, roles: make(map[string]role)}
	for _, n := range names.Tolerant {
		r.roles[n] |= roleTolerant
	}
	for _, n := range names.Exact {
		r.roles[n] |= roleExact
	}
	for _, n := range names.Directive {
		r.roles[n] |= roleDirective
	}
	for _, n := range names.Part {
		r.roles[n] |= rolePart
	}
	return r, nil
}

// Classify decides which marker, if any, u is.
func (r *Recognizer) Classify(u unit.Unit) (Marker, error) {
	none := Marker{Kind: KindNone, Span: u.Span}

	decl, ok := u.Node.(*ast.GenDecl)
	if !ok || decl.Tok != token.VAR {
		return none, nil
	}
	spec, call, rl := r.findCall(decl)
	if call == nil {
		return none, nil
	}
	if !rl.single() {
		return Marker{}, &ConflictingMarkersError{Span: u.Span, Excerpt: u.Text(), Roles: rl.names()}
	}

	lit, reason := shapeProblem(decl, spec, call)
	if reason != "" {
		return Marker{}, &UnhandledExtensionShapeError{Span: u.Span, Excerpt: u.Text(), Reason: reason}
	}
	payload, err := strconv.Unquote(lit.Value)
	if err != nil {
		return Marker{}, &UnhandledExtensionShapeError{Span: u.Span, Excerpt: u.Text(), Reason: "malformed string literal"}
	}

	m := Marker{Span: u.Span}
	switch rl {
	case roleTolerant, roleExact:
		match := MatchTolerant
		if rl == roleExact {
			match = MatchExact
		}
		m.Kind = KindAssertion
		m.Assertion = Assertion{Match: match, Payload: payload, Span: u.Span}
	case roleDirective:
		m.Kind = KindDirective
		m.Text = payload
	case rolePart:
		m.Kind = KindPartLabel
		m.Name = payload
	}
	return m, nil
}

// findCall returns the first marker call used as a declaration value.
func (r *Recognizer) findCall(decl *ast.GenDecl) (*ast.ValueSpec, *ast.CallExpr, role) {
	for _, s := range decl.Specs {
		vs, ok := s.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, v := range vs.Values {
			call, ok := v.(*ast.CallExpr)
			if !ok {
				continue
			}
			if rl := r.roleOf(call); rl != 0 {
				return vs, call, rl
			}
		}
	}
	return nil, nil, 0
}

func (r *Recognizer) roleOf(call *ast.CallExpr) role {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return 0
	}
	x, ok := sel.X.(*ast.Ident)
	if !ok || x.Name != r.qualifier {
		return 0
	}
	return r.roles[sel.Sel.Name]
}

// shapeProblem returns the string literal argument of a well-formed marker,
// or a description of the decoration that makes it ill-formed.
func shapeProblem(decl *ast.GenDecl, spec *ast.ValueSpec, call *ast.CallExpr) (*ast.BasicLit, string) {
	switch {
	case decl.Lparen.IsValid() || len(decl.Specs) != 1:
		return nil, "marker declared inside a var group"
	case spec.Type != nil:
		return nil, "marker declaration has a type annotation"
	case len(spec.Names) != 1 || spec.Names[0].Name != "_":
		return nil, "marker must be assigned to the blank identifier"
	case len(spec.Values) != 1:
		return nil, "marker declaration has extra values"
	case call.Ellipsis.IsValid():
		return nil, "marker call is variadic"
	case len(call.Args) != 1:
		return nil, "marker takes exactly one argument"
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return nil, "marker argument must be a string literal"
	}
	return lit, ""
}

// Nested is a marker-shaped call buried inside an ordinary unit. It is never
// classified; the unit stays ordinary code.
type Nested struct {
	Name string
	Span source.Span
}

// Nested lists marker-shaped calls inside u. Top-level markers are not
// reported; call it on units that classified as KindNone.
func (r *Recognizer) Nested(u unit.Unit) []Nested {
	if u.Node == nil {
		return nil
	}
	var out []Nested
	ast.Inspect(u.Node, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || r.roleOf(call) == 0 {
			return true
		}
		sel := call.Fun.(*ast.SelectorExpr)
		out = append(out, Nested{
			Name: r.qualifier + "." + sel.Sel.Name,
			Span: u.SpanOf(call),
		})
		return true
	})
	return out
}
