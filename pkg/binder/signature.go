package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

var errorType = reflect.TypeFor[error]()

// Source says where a parameter's value comes from.
type Source int

const (
	// SourcePrimitive values are supplied by the caller by type.
	SourcePrimitive Source = iota + 1

	// SourceNamed values come from the path parameter with the same name, else the resolver.
	SourceNamed

	// SourceQuery values come from the query string.
	SourceQuery

	// SourceService values come from the resolver by type.
	SourceService

	// SourceForm values come from the urlencoded or multipart request body.
	SourceForm

	// SourceBody values are the whole request body decoded as JSON.
	SourceBody
)

func (s Source) String() string {
	switch s {
	case SourcePrimitive:
		return "primitive"
	case SourceNamed:
		return "named"
	case SourceQuery:
		return "query"
	case SourceService:
		return "service"
	case SourceForm:
		return "form"
	case SourceBody:
		return "body"
	default:
		return "unknown"
	}
}

// Param describes one value a handler needs.
type Param struct {
	Type       reflect.Type
	policy     *bluemonday.Policy
	Name       string
	Default    string
	Sanitize   string
	index      []int
	Source     Source
	HasDefault bool
}

// Optional reports whether the parameter can be left to its default or zero value.
func (p Param) Optional() bool {
	return p.HasDefault || p.Source == SourceQuery || p.Source == SourceForm || p.Source == SourceBody
}

type argument struct {
	typ    reflect.Type
	params []int
	single bool
}

// Signature is the inspected shape of a handler.
type Signature struct {
	fn           reflect.Value
	args         []argument
	params       []Param
	returnsValue bool
	readsBody    bool
}

// Inspect builds the signature of fn. primitive reports which types the caller supplies itself.
func Inspect(fn any, primitive func(reflect.Type) bool) (*Signature, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidHandler, fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic handlers are not supported", ErrInvalidHandler)
	}

	sig := &Signature{fn: v}
	switch {
	case t.NumOut() == 1 && t.Out(0) == errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType:
		sig.returnsValue = true
	default:
		return nil, fmt.Errorf("%w: %s must return error or (T, error)", ErrInvalidHandler, t)
	}

	if primitive == nil {
		primitive = func(reflect.Type) bool { return false }
	}

	for i := range t.NumIn() {
		at := t.In(i)
		switch {
		case primitive(at):
			sig.addSingle(Param{Type: at, Source: SourcePrimitive})
		case at.Kind() == reflect.Struct:
			if err := sig.addStruct(at, primitive); err != nil {
				return nil, err
			}
		default:
			sig.addSingle(Param{Type: at, Source: SourceService})
		}
	}
	return sig, nil
}

// Params returns the parameter descriptors in binding order.
func (s *Signature) Params() []Param { return s.params }

// ReturnsValue reports whether the handler returns (T, error).
func (s *Signature) ReturnsValue() bool { return s.returnsValue }

func (s *Signature) addSingle(p Param) {
	s.params = append(s.params, p)
	s.args = append(s.args, argument{typ: p.Type, params: []int{len(s.params) - 1}, single: true})
}

func (s *Signature) addStruct(t reflect.Type, primitive func(reflect.Type) bool) error {
	arg := argument{typ: t}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous || f.Tag.Get("inject") == "-" {
			continue
		}
		p, err := fieldParam(t, f, primitive)
		if err != nil {
			return err
		}
		if p.Source == SourceBody {
			if s.readsBody {
				return fmt.Errorf("%w: %s.%s: only one body field per handler", ErrInvalidHandler, t, f.Name)
			}
			s.readsBody = true
		}
		s.params = append(s.params, p)
		arg.params = append(arg.params, len(s.params)-1)
	}
	s.args = append(s.args, arg)
	return nil
}

func fieldParam(owner reflect.Type, f reflect.StructField, primitive func(reflect.Type) bool) (Param, error) {
	p := Param{
		Type:  f.Type,
		Name:  lo.CoalesceOrEmpty(f.Tag.Get("param"), strings.ToLower(f.Name)),
		index: f.Index,
	}

	q, isQuery := f.Tag.Lookup("query")
	form, isForm := f.Tag.Lookup("form")
	body, isBody := f.Tag.Lookup("body")
	switch {
	case primitive(f.Type):
		p.Source = SourcePrimitive
	case isBody:
		if body != "json" {
			return Param{}, fmt.Errorf("%w: %s.%s: unknown body format %q", ErrInvalidHandler, owner, f.Name, body)
		}
		p.Source = SourceBody
		p.Name = "body"
		return p, nil
	case isQuery, isForm:
		p.Source = SourceQuery
		p.Name = lo.CoalesceOrEmpty(q, p.Name)
		if isForm {
			p.Source = SourceForm
			p.Name = lo.CoalesceOrEmpty(form, strings.ToLower(f.Name))
		}
		if !Coercible(f.Type) {
			return Param{}, fmt.Errorf("%w: %s.%s: %s field of unsupported type %s", ErrInvalidHandler, owner, f.Name, p.Source, f.Type)
		}
	default:
		p.Source = SourceNamed
	}

	if def, ok := f.Tag.Lookup("default"); ok {
		if _, err := Coerce(def, f.Type); err != nil {
			return Param{}, fmt.Errorf("%w: %s.%s: bad default %q: %w", ErrInvalidHandler, owner, f.Name, def, err)
		}
		p.Default, p.HasDefault = def, true
	}

	if name, ok := f.Tag.Lookup("sanitize"); ok {
		if f.Type.Kind() != reflect.String {
			return Param{}, fmt.Errorf("%w: %s.%s: sanitize requires a string field", ErrInvalidHandler, owner, f.Name)
		}
		policy, err := sanitizePolicy(name)
		if err != nil {
			return Param{}, fmt.Errorf("%w: %s.%s: %w", ErrInvalidHandler, owner, f.Name, err)
		}
		p.policy, p.Sanitize = policy, name
	}
	return p, nil
}

func sanitizePolicy(name string) (*bluemonday.Policy, error) {
	switch name {
	case "strict":
		return bluemonday.StrictPolicy(), nil
	case "ugc":
		return bluemonday.UGCPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown sanitize policy %q", name)
	}
}
