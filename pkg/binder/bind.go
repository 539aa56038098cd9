package binder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/runway/pkg/route"
)

// Resolver produces service values for parameters.
// Implementations return an error wrapping ErrNotConfigured when nothing provides the
// parameter, and any other error when a provider exists but fails.
type Resolver interface {
	Resolve(ctx context.Context, p Param) (reflect.Value, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, p Param) (reflect.Value, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, p Param) (reflect.Value, error) {
	return f(ctx, p)
}

// Input is the per-request data arguments are bound from.
type Input struct {
	Request   *http.Request
	Primitive func(reflect.Type) (reflect.Value, bool)
	Params    route.Params
}

// Bind produces the handler's argument list.
func (s *Signature) Bind(in Input, r Resolver) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(s.args))
	for i, arg := range s.args {
		if arg.single {
			v, err := s.bindParam(in, r, s.params[arg.params[0]])
			if err != nil {
				return nil, err
			}
			args[i] = v
			continue
		}

		sv := reflect.New(arg.typ).Elem()
		for _, pi := range arg.params {
			p := s.params[pi]
			v, err := s.bindParam(in, r, p)
			if err != nil {
				return nil, err
			}
			sv.FieldByIndex(p.index).Set(v)
		}
		args[i] = sv
	}
	return args, nil
}

// Call invokes the handler with args bound by Bind.
func (s *Signature) Call(args []reflect.Value) (any, error) {
	out := s.fn.Call(args)

	var err error
	if e := out[len(out)-1]; !e.IsNil() {
		err = e.Interface().(error)
	}
	if !s.returnsValue {
		return nil, err
	}
	return out[0].Interface(), err
}

func (s *Signature) bindParam(in Input, r Resolver, p Param) (reflect.Value, error) {
	switch p.Source {
	case SourcePrimitive:
		if in.Primitive != nil {
			if v, ok := in.Primitive(p.Type); ok {
				return v, nil
			}
		}
		return reflect.Value{}, &UnresolvableArgumentError{Name: p.Name, Type: p.Type, Err: ErrNoPrimitive}

	case SourceQuery:
		if in.Request != nil {
			if q := in.Request.URL.Query(); q.Has(p.Name) {
				return coerceParam(p, q.Get(p.Name))
			}
		}
		if p.HasDefault {
			return coerceParam(p, p.Default)
		}
		return reflect.Zero(p.Type), nil

	case SourceForm:
		if in.Request != nil {
			if err := ParseForm(in.Request); err != nil {
				return reflect.Value{}, err
			}
			if in.Request.PostForm.Has(p.Name) {
				return coerceParam(p, in.Request.PostForm.Get(p.Name))
			}
		}
		if p.HasDefault {
			return coerceParam(p, p.Default)
		}
		return reflect.Zero(p.Type), nil

	case SourceBody:
		v := reflect.New(p.Type)
		if in.Request != nil {
			if err := DecodeJSON(in.Request, v.Interface()); err != nil {
				return reflect.Value{}, err
			}
		}
		return v.Elem(), nil

	case SourceNamed:
		if raw, ok := in.Params.Get(p.Name); ok {
			return coerceParam(p, raw)
		}
	}

	return resolve(in, r, p)
}

func resolve(in Input, r Resolver, p Param) (reflect.Value, error) {
	err := ErrNotConfigured
	if r != nil {
		ctx := context.Background()
		if in.Request != nil {
			ctx = in.Request.Context()
		}

		var v reflect.Value
		v, err = r.Resolve(ctx, p)
		if err == nil {
			if !v.IsValid() || !v.Type().AssignableTo(p.Type) {
				return reflect.Value{}, &UnresolvableArgumentError{
					Name:         p.Name,
					Type:         p.Type,
					Err:          fmt.Errorf("resolver returned %s", describe(v)),
					Construction: true,
				}
			}
			return v, nil
		}
	}

	if !errors.Is(err, ErrNotConfigured) {
		return reflect.Value{}, &UnresolvableArgumentError{Name: p.Name, Type: p.Type, Err: err, Construction: true}
	}
	if p.HasDefault {
		return coerceParam(p, p.Default)
	}
	return reflect.Value{}, &UnresolvableArgumentError{Name: p.Name, Type: p.Type, Err: err}
}

func coerceParam(p Param, raw string) (reflect.Value, error) {
	v, err := Coerce(raw, p.Type)
	if err != nil {
		return reflect.Value{}, &ArgumentCoercionError{Name: p.Name, Value: raw, Type: p.Type, Err: err}
	}
	if p.policy != nil {
		v = reflect.ValueOf(p.policy.Sanitize(v.String())).Convert(p.Type)
	}
	return v, nil
}

func describe(v reflect.Value) string {
	if !v.IsValid() {
		return "no value"
	}
	return v.Type().String()
}
