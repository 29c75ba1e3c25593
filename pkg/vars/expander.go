package vars

import "strings"

// Expander substitutes ${name} tokens in strings with the help of a resolver
// chain.
type Expander struct {
	chain Chain
}

// NewExpander creates an Expander over the given resolvers. Resolution is
// first match wins, in argument order.
func NewExpander(resolvers ...Resolver) *Expander {
	return &Expander{chain: Chain(resolvers)}
}

// Expand substitutes all ${name} tokens in s. A resolved value may itself
// contain tokens, so the result is re-expanded until a fixed point is
// reached. The number of passes is capped at the initial token count plus
// one; tokens that never converge (mutually referential values) yield the
// last stable value instead of looping forever.
func (e *Expander) Expand(s string) (string, error) {
	// cap guards against values that keep rewriting each other
	passes := strings.Count(s, "${") + 1

	current := s
	for i := 0; i < passes; i++ {
		expanded, err := e.expandOnce(current)
		if err != nil {
			return "", err
		}
		if expanded == current {
			return expanded, nil
		}
		current = expanded
	}

	return current, nil
}

// expandOnce substitutes every token exactly one time.
func (e *Expander) expandOnce(s string) (string, error) {
	var out strings.Builder
	rest := s

	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}

		end := strings.Index(rest[start:], "}")
		if end < 0 {
			// unterminated token, leave the remainder untouched
			out.WriteString(rest)
			return out.String(), nil
		}

		name := rest[start+2 : start+end]
		value, err := e.chain.Resolve(name)
		if err != nil {
			return "", err
		}

		out.WriteString(rest[:start])
		out.WriteString(value)
		rest = rest[start+end+1:]
	}
}
