package core

import (
	"fmt"

	"github.com/tsawler/pdftranslate/internal/filters"
)

// Decode applies the stream's filter chain using the default limits.
// Image codec filters (DCT, JPX) end the chain and leave their payload
// untouched.
func (s *Stream) Decode() ([]byte, error) {
	return s.DecodeWithLimits(filters.DefaultLimits)
}

// DecodeWithLimits applies the stream's filter chain under limits.
func (s *Stream) DecodeWithLimits(limits filters.Limits) ([]byte, error) {
	names, err := FilterNames(s.Dict.Get("Filter"))
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return s.Data, nil
	}

	kinds := make([]filters.Kind, len(names))
	for i, name := range names {
		k, err := filters.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds[i] = k
	}

	return limits.DecodeChain(kinds, s.Data, DecodeParams(s.Dict.Get("DecodeParms"), len(names)))
}

// FilterNames normalises a /Filter value, a single name or an array of
// names, to a slice. Indirect references must already be resolved.
func FilterNames(obj Object) ([]string, error) {
	switch v := obj.(type) {
	case nil, Null:
		return nil, nil
	case Name:
		return []string{string(v)}, nil
	case Array:
		names := make([]string, 0, len(v))
		for i, item := range v {
			n, ok := item.(Name)
			if !ok {
				return nil, fmt.Errorf("filter %d is %s, not a name", i, item.Type())
			}
			names = append(names, string(n))
		}
		return names, nil
	default:
		return nil, fmt.Errorf("invalid /Filter type %s", obj.Type())
	}
}

// DecodeParams aligns a /DecodeParms value with a chain of n filters. A
// single dictionary applies to a single-filter chain; entries that are null
// or missing yield nil params.
func DecodeParams(obj Object, n int) []filters.Params {
	out := make([]filters.Params, n)
	switch v := obj.(type) {
	case Dict:
		if n > 0 {
			out[0] = ParamsFromDict(v)
		}
	case Array:
		for i := 0; i < n && i < len(v); i++ {
			if d, ok := v[i].(Dict); ok {
				out[i] = ParamsFromDict(d)
			}
		}
	}
	return out
}

// ParamsFromDict converts a decode-parameters dictionary to filter params,
// translating PDF objects to Go primitives.
func ParamsFromDict(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case String:
			params[k] = string(obj)
		case Name:
			params[k] = string(obj)
		default:
			params[k] = v
		}
	}
	return params
}
