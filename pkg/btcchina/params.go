package btcchina

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Ptr returns a pointer to v. It is a convenience for filling optional request fields.
func Ptr[T any](v T) *T {
	return &v
}

// Decimal parses s into a decimal pointer for price and amount fields.
// It panics on malformed input and is meant for literals.
func Decimal(s string) *apd.Decimal {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("btcchina: invalid decimal %q: %v", s, err))
	}
	return d
}

// nullParam is a present argument that is sent as JSON null.
type nullParam struct{}

// Null is sent as JSON null, unlike nil which ends the positional list.
var Null any = nullParam{}

// paramArray builds the positional params of a private call from at most maxArgs
// arguments. It stops at the first absent argument (nil, or a nil pointer); anything
// after a hole is dropped even when set. Callers must fill arguments from the left.
func paramArray(maxArgs int, args ...any) []any {
	params := make([]any, 0, maxArgs)
	for i := 0; i < maxArgs && i < len(args); i++ {
		v, ok := scalar(args[i])
		if !ok {
			break
		}
		params = append(params, v)
	}
	return params
}

// scalar dereferences v and reports whether it is present.
// Decimals become json.Number in plain notation so they are encoded as JSON numbers.
func scalar(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case nullParam:
		return nil, true
	case *apd.Decimal:
		if val == nil {
			return nil, false
		}
		return json.Number(plainDecimal(val)), true
	case apd.Decimal:
		return json.Number(plainDecimal(&val)), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return scalar(rv.Elem().Interface())
	}
	return v, true
}

// plainDecimal renders d without trailing zeros or exponent, e.g. 1.50 as 1.5
// and 1E+2 as 100.
func plainDecimal(d *apd.Decimal) string {
	var reduced apd.Decimal
	reduced.Reduce(d)
	return reduced.Text('f')
}

// joinParams renders params the way the server rebuilds them for signature checks:
// comma separated, with no quoting.
func joinParams(params []any) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatParam(p)
	}
	return strings.Join(parts, ",")
}

func formatParam(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case *apd.Decimal:
		if val == nil {
			return ""
		}
		return plainDecimal(val)
	default:
		return fmt.Sprint(val)
	}
}
