package marker

import (
	"fmt"
	"go/token"
)

// Names configures which qualified calls act as markers.
type Names struct {
	Qualifier string
	Tolerant  []string
	Exact     []string
	Directive []string
	Part      []string
}

// DefaultNames returns expect.Output / expect.Exact / expect.Doc / expect.Part.
func DefaultNames() Names {
	return Names{
		Qualifier: "expect",
		Tolerant:  []string{"Output"},
		Exact:     []string{"Exact"},
		Directive: []string{"Doc"},
		Part:      []string{"Part"},
	}
}

// Validate checks that every configured name is a Go identifier and that each
// role has at least one name.
func (n Names) Validate() error {
	if !token.IsIdentifier(n.Qualifier) {
		return fmt.Errorf("marker qualifier %q is not an identifier", n.Qualifier)
	}
	groups := []struct {
		role  string
		names []string
	}{
		{"tolerant", n.Tolerant},
		{"exact", n.Exact},
		{"directive", n.Directive},
		{"part", n.Part},
	}
	for _, g := range groups {
		if len(g.names) == 0 {
			return fmt.Errorf("no %s marker names configured", g.role)
		}
		for _, name := range g.names {
			if !token.IsIdentifier(name) {
				return fmt.Errorf("%s marker name %q is not an identifier", g.role, name)
			}
		}
	}
	return nil
}

// Primary returns the first name configured for the role; the printer uses
// it when wrapping blocks.
func (n Names) Primary(k Kind, m Match) string {
	pick := func(names []string) string {
		if len(names) == 0 {
			return ""
		}
		return names[0]
	}
	switch k {
	case KindAssertion:
		if m == MatchExact {
			return pick(n.Exact)
		}
		return pick(n.Tolerant)
	case KindDirective:
		return pick(n.Directive)
	case KindPartLabel:
		return pick(n.Part)
	default:
		return ""
	}
}
