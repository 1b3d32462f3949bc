package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Fragment is one primitive piece of a value node's content. The zero
// Fragment is undefined.
type Fragment struct {
	// Value is a string, bool, nil (null), float64, int, int64 or json.Number.
	Value   any
	Defined bool
}

// Scalar returns a defined fragment holding v.
func Scalar(v any) Fragment {
	return Fragment{Value: v, Defined: true}
}

// Text renders the fragment the way it appears inside a concatenation.
// Null renders as the empty string.
func (f Fragment) Text() string {
	if !f.Defined {
		return ""
	}
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (f Fragment) String() string {
	if !f.Defined {
		return "<undefined>"
	}
	return fmt.Sprintf("%#v", f.Value)
}

// Concat joins the text of every defined fragment.
func Concat(frags []Fragment) Fragment {
	var b strings.Builder
	for _, f := range frags {
		if !f.Defined {
			continue
		}
		b.WriteString(f.Text())
	}
	return Scalar(b.String())
}

// IsPrimitive reports whether v can be held by a fragment.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, json.Number:
		return true
	default:
		return false
	}
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks an input entry that is present but carries no value.
var Undefined any = undefined{}
