package urlstate

import (
	"net/url"
	"strconv"
)

// Field binds one piece of form state to a URL query parameter.
type Field struct {
	// Key is the name of the value in the persisted form state.
	Key string
	// Param is the query parameter name.
	Param string

	decode func(raw string) (changed bool, err error)
	encode func() string
}

// NumberField binds a float64.
func NumberField(key, param string, v *float64) Field {
	return Field{
		Key:   key,
		Param: param,
		decode: func(raw string) (bool, error) {
			n, ok := ParseNumber(raw, *v)
			if !ok {
				return false, invalid(param, raw)
			}
			if n == *v {
				return false, nil
			}
			*v = n
			return true, nil
		},
		encode: func() string { return formatNumber(*v) },
	}
}

// IntField binds an int.
func IntField(key, param string, v *int) Field {
	return Field{
		Key:   key,
		Param: param,
		decode: func(raw string) (bool, error) {
			n, ok := ParseInt(raw, *v)
			if !ok {
				return false, invalid(param, raw)
			}
			if n == *v {
				return false, nil
			}
			*v = n
			return true, nil
		},
		encode: func() string { return strconv.Itoa(*v) },
	}
}

// BoolField binds a bool.
func BoolField(key, param string, v *bool) Field {
	return Field{
		Key:   key,
		Param: param,
		decode: func(raw string) (bool, error) {
			b, ok := ParseBoolean(raw, *v)
			if !ok {
				return false, invalid(param, raw)
			}
			if b == *v {
				return false, nil
			}
			*v = b
			return true, nil
		},
		encode: func() string { return strconv.FormatBool(*v) },
	}
}

// EnumField binds a string restricted to allowed values.
func EnumField(key, param string, v *string, allowed ...string) Field {
	return Field{
		Key:   key,
		Param: param,
		decode: func(raw string) (bool, error) {
			s, ok := ParseEnum(raw, allowed, *v)
			if !ok {
				return false, invalid(param, raw)
			}
			if s == *v {
				return false, nil
			}
			*v = s
			return true, nil
		},
		encode: func() string { return *v },
	}
}

// Present reports whether any managed parameter appears in query.
func Present(fields []Field, query url.Values) bool {
	for _, f := range fields {
		if _, ok := query[f.Param]; ok {
			return true
		}
	}
	return false
}

// Sync decodes every managed parameter present in query into its bound value.
// Values are only written when they differ from the current state; the keys
// that changed are returned. Decoding stops at the first undecodable
// parameter, leaving earlier fields applied.
func Sync(fields []Field, query url.Values) ([]string, error) {
	var changed []string
	for _, f := range fields {
		if _, ok := query[f.Param]; !ok {
			continue
		}
		updated, err := f.decode(query.Get(f.Param))
		if err != nil {
			return changed, err
		}
		if updated {
			changed = append(changed, f.Key)
		}
	}
	return changed, nil
}

// Commit returns a copy of query with every managed parameter set to the
// current state. Unrelated parameters are preserved.
func Commit(fields []Field, query url.Values) url.Values {
	out := clone(query)
	for _, f := range fields {
		out.Set(f.Param, f.encode())
	}
	return out
}

// Clear returns a copy of query without the managed parameters.
func Clear(fields []Field, query url.Values) url.Values {
	out := clone(query)
	for _, f := range fields {
		out.Del(f.Param)
	}
	return out
}

// Params returns the store key to query parameter mapping.
func Params(fields []Field) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Param
	}
	return m
}

func clone(query url.Values) url.Values {
	out := make(url.Values, len(query))
	for k, v := range query {
		out[k] = append([]string(nil), v...)
	}
	return out
}
