package route

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// defaultSegment is what an unconstrained {name} matches.
const defaultSegment = `[^/]+`

// Param is a captured path parameter.
type Param struct {
	Name  string
	Value string
}

// Params holds captured path parameters in declaration order.
type Params []Param

// Get returns the raw value captured for name.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Map returns the parameters as a map.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return m
}

type part struct {
	literal    string
	param      string
	expr       string
	constraint *regexp.Regexp
}

func (p part) isParam() bool { return p.param != "" }

// Matcher is the compiled form of a route pattern.
type Matcher struct {
	re      *regexp.Regexp
	pattern string
	names   []string
	groups  []int
	parts   []part
}

// Compile parses a pattern and builds its matcher.
// The same pattern always compiles to an equivalent matcher.
func Compile(pattern string) (*Matcher, error) {
	parts, err := parse(pattern)
	if err != nil {
		return nil, err
	}

	var (
		expr  strings.Builder
		names []string
		seen  = make(map[string]struct{})
	)
	expr.WriteByte('^')
	for i := range parts {
		p := &parts[i]
		if !p.isParam() {
			expr.WriteString(regexp.QuoteMeta(p.literal))
			continue
		}
		if _, dup := seen[p.param]; dup {
			return nil, &InvalidPatternError{Pattern: pattern, Reason: "duplicate parameter name " + strconv.Quote(p.param)}
		}
		seen[p.param] = struct{}{}

		segment := defaultSegment
		if p.expr != "" {
			c, err := regexp.Compile(`^(?:` + p.expr + `)$`)
			if err != nil {
				return nil, &InvalidPatternError{Pattern: pattern, Reason: "invalid constraint for " + strconv.Quote(p.param) + ": " + err.Error()}
			}
			p.constraint = c
			segment = p.expr
		}
		expr.WriteString(`(?P<` + groupName(len(names)) + `>` + segment + `)`)
		names = append(names, p.param)
	}
	expr.WriteByte('$')

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Reason: err.Error()}
	}

	groups := make([]int, len(names))
	for i := range names {
		groups[i] = re.SubexpIndex(groupName(i))
	}

	return &Matcher{
		re:      re,
		pattern: pattern,
		names:   names,
		groups:  groups,
		parts:   parts,
	}, nil
}

// Pattern returns the source pattern.
func (m *Matcher) Pattern() string { return m.pattern }

// ParamNames returns the captured parameter names in declaration order.
func (m *Matcher) ParamNames() []string { return m.names }

// Match reports whether path is accepted and returns the captured parameters.
func (m *Matcher) Match(path string) (Params, bool) {
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	params := make(Params, len(m.names))
	for i, name := range m.names {
		params[i] = Param{Name: name, Value: sub[m.groups[i]]}
	}
	return params, true
}

// Build substitutes params into the pattern, checking each value against its constraint.
func (m *Matcher) Build(params map[string]string) (string, error) {
	var b strings.Builder
	for _, p := range m.parts {
		if !p.isParam() {
			b.WriteString(p.literal)
			continue
		}
		v, ok := params[p.param]
		if !ok {
			return "", &InvalidParamError{Pattern: m.pattern, Param: p.param, Reason: "missing value"}
		}
		if p.constraint != nil && !p.constraint.MatchString(v) {
			return "", &InvalidParamError{Pattern: m.pattern, Param: p.param, Reason: "value " + strconv.Quote(v) + " does not match " + p.expr}
		}
		if p.constraint == nil && v == "" {
			return "", &InvalidParamError{Pattern: m.pattern, Param: p.param, Reason: "value must not be empty"}
		}
		b.WriteString(url.PathEscape(v))
	}
	return b.String(), nil
}

// specificity ranks matchers for the MostSpecific policy.
func (m *Matcher) specificity() (literal, constrained int) {
	for _, p := range m.parts {
		switch {
		case !p.isParam():
			literal += len(p.literal)
		case p.constraint != nil:
			constrained++
		}
	}
	return literal, constrained
}

func groupName(i int) string { return "p" + strconv.Itoa(i) }

func parse(pattern string) ([]part, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, &InvalidPatternError{Pattern: pattern, Reason: "must start with '/'"}
	}

	var (
		parts []part
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, part{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		switch pattern[i] {
		case '}':
			return nil, &InvalidPatternError{Pattern: pattern, Reason: "unbalanced '}' at offset " + strconv.Itoa(i)}
		case '{':
			end := closingBrace(pattern, i)
			if end < 0 {
				return nil, &InvalidPatternError{Pattern: pattern, Reason: "unbalanced '{' at offset " + strconv.Itoa(i)}
			}
			name, expr, hasExpr := strings.Cut(pattern[i+1:end], ":")
			if !isIdentifier(name) {
				return nil, &InvalidPatternError{Pattern: pattern, Reason: "invalid parameter name " + strconv.Quote(name)}
			}
			if hasExpr && expr == "" {
				return nil, &InvalidPatternError{Pattern: pattern, Reason: "empty constraint for " + strconv.Quote(name)}
			}
			flush()
			parts = append(parts, part{param: name, expr: expr})
			i = end + 1
		default:
			lit.WriteByte(pattern[i])
			i++
		}
	}
	flush()
	return parts, nil
}

// closingBrace returns the index of the brace closing the one at open, or -1.
func closingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
