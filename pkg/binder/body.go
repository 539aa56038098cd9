package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/samber/lo"
)

// MaxBodyBytes caps the request body read by DecodeJSON and ParseForm.
const MaxBodyBytes = 4 << 20

// MaxMemory is the part of a multipart form kept in memory.
const MaxMemory = 8 << 20

// IsJSON reports whether r declares a JSON body, "application/json" or a "+json" type.
func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// DecodeJSON decodes the request body into v. An empty body leaves v as is.
// Malformed or oversized bodies are reported as *ArgumentCoercionError.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = ErrBodyTooLarge
	}
	return &ArgumentCoercionError{Name: "body", Type: reflect.TypeOf(v), Err: err}
}

// ParseForm parses an urlencoded or multipart body into r.PostForm.
func ParseForm(r *http.Request) error {
	if r.Body != nil && r.Body != http.NoBody {
		r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	}

	var err error
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		err = r.ParseMultipartForm(MaxMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = ErrBodyTooLarge
	}
	return &ArgumentCoercionError{Name: "form", Type: reflect.TypeFor[url.Values](), Err: err}
}

// DecodeValues fills the struct v points to from values. Fields are named by
// tag, else by their lower-cased name; "-" skips a field. The default and
// sanitize tags apply as they do to handler parameters, and slices of
// coercible types take every value of their key.
func DecodeValues(values url.Values, tag string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: decode target must be a non-nil struct pointer, got %T", ErrUnsupportedType, v)
	}
	sv := rv.Elem()

	for _, f := range reflect.VisibleFields(sv.Type()) {
		name := f.Tag.Get(tag)
		if !f.IsExported() || f.Anonymous || name == "-" {
			continue
		}
		name = lo.CoalesceOrEmpty(name, strings.ToLower(f.Name))

		p, err := valueParam(sv.Type(), f, name)
		if err != nil {
			return err
		}
		raw, ok := values[name]
		if !ok && p.HasDefault {
			raw, ok = []string{p.Default}, true
		}
		if !ok {
			continue
		}

		field := sv.FieldByIndex(f.Index)
		if f.Type.Kind() == reflect.Slice {
			elem := p
			elem.Type = f.Type.Elem()
			list := reflect.MakeSlice(f.Type, 0, len(raw))
			for _, s := range raw {
				ev, err := coerceParam(elem, s)
				if err != nil {
					return err
				}
				list = reflect.Append(list, ev)
			}
			field.Set(list)
			continue
		}
		fv, err := coerceParam(p, raw[0])
		if err != nil {
			return err
		}
		field.Set(fv)
	}
	return nil
}

// valueParam describes a field bound by DecodeValues.
func valueParam(owner reflect.Type, f reflect.StructField, name string) (Param, error) {
	p := Param{Type: f.Type, Name: name, Source: SourceForm, index: f.Index}
	elem := f.Type
	if elem.Kind() == reflect.Slice && !Coercible(elem) {
		elem = elem.Elem()
	}
	if !Coercible(elem) {
		return Param{}, fmt.Errorf("%w: %s.%s: cannot decode into %s", ErrUnsupportedType, owner, f.Name, f.Type)
	}
	if def, ok := f.Tag.Lookup("default"); ok {
		p.Default, p.HasDefault = def, true
	}
	if sanitize, ok := f.Tag.Lookup("sanitize"); ok {
		if elem.Kind() != reflect.String {
			return Param{}, fmt.Errorf("%w: %s.%s: sanitize requires a string field", ErrUnsupportedType, owner, f.Name)
		}
		policy, err := sanitizePolicy(sanitize)
		if err != nil {
			return Param{}, fmt.Errorf("%w: %s.%s: %w", ErrUnsupportedType, owner, f.Name, err)
		}
		p.policy, p.Sanitize = policy, sanitize
	}
	return p, nil
}
