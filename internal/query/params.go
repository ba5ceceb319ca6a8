package query

import (
	"fmt"
	"net/url"
	"strconv"
)

// Param is one outbound request parameter. A nil Value or an empty string
// marks the parameter as unset.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter set. Order is kept so projections and
// logs are stable.
type Params []Param

// Clean drops parameters whose value is nil or the empty string. Cleaning an
// already clean set returns an equal set.
func Clean(params Params) Params {
	cleaned := make(Params, 0, len(params))
	for _, p := range params {
		if isEmpty(p.Value) {
			continue
		}
		cleaned = append(cleaned, p)
	}
	return cleaned
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *string:
		return val == nil || *val == ""
	case *int:
		return val == nil
	default:
		return false
	}
}

// Get returns the string form of key's value and whether it was present.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return format(param.Value), true
		}
	}
	return "", false
}

// Values converts p into url.Values. Empty parameters are skipped.
func (p Params) Values() url.Values {
	values := url.Values{}
	for _, param := range Clean(p) {
		values.Set(param.Key, format(param.Value))
	}
	return values
}

// Encode renders the parameters as a query string in their declared order.
func (p Params) Encode() string {
	var buf []byte
	for _, param := range Clean(p) {
		if len(buf) > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, url.QueryEscape(param.Key)...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(format(param.Value))...)
	}
	return string(buf)
}

func format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case int:
		return strconv.Itoa(val)
	case *int:
		if val == nil {
			return ""
		}
		return strconv.Itoa(*val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
