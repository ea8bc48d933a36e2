package evaluator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	COMPLEX_OBJ = "COMPLEX"
	BOOLEAN_OBJ = "BOOLEAN"
	STRING_OBJ  = "STRING"
	BYTES_OBJ   = "BYTES"
	NIL_OBJ     = "NIL"
	ERROR_OBJ   = "ERROR"
)

// Object is a runtime value flowing through predicate evaluation.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type Complex struct {
	Value complex128
}

func (c *Complex) Type() ObjectType { return COMPLEX_OBJ }
func (c *Complex) Inspect() string  { return fmt.Sprintf("%v", c.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return fmt.Sprintf("%q", s.Value) }

type Bytes struct {
	Value []byte
}

func (b *Bytes) Type() ObjectType { return BYTES_OBJ }
func (b *Bytes) Inspect() string  { return fmt.Sprintf("%q", b.Value) }

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NIL   = &Nil{}
)

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// FromGo wraps a native Go value in the matching Object. Integer widths
// collapse to int64, float32 to float64. Unrepresentable values produce an
// Error object so the caller gets a diagnosable non-match instead of a panic.
func FromGo(v interface{}) Object {
	switch val := v.(type) {
	case nil:
		return NIL
	case Object:
		return val
	case bool:
		return nativeBoolToBooleanObject(val)
	case int:
		return &Integer{Value: int64(val)}
	case int8:
		return &Integer{Value: int64(val)}
	case int16:
		return &Integer{Value: int64(val)}
	case int32:
		return &Integer{Value: int64(val)}
	case int64:
		return &Integer{Value: val}
	case uint:
		return &Integer{Value: int64(val)}
	case uint8:
		return &Integer{Value: int64(val)}
	case uint16:
		return &Integer{Value: int64(val)}
	case uint32:
		return &Integer{Value: int64(val)}
	case uint64:
		return &Integer{Value: int64(val)}
	case float32:
		return &Float{Value: float64(val)}
	case float64:
		return &Float{Value: val}
	case complex64:
		return &Complex{Value: complex128(val)}
	case complex128:
		return &Complex{Value: val}
	case string:
		return &String{Value: val}
	case []byte:
		return &Bytes{Value: val}
	}
	// Named types (nominal subtypes like `type SpecialInt int`) fall through
	// the type switch; unwrap them by kind.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return nativeBoolToBooleanObject(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Integer{Value: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Integer{Value: int64(rv.Uint())}
	case reflect.Float32, reflect.Float64:
		return &Float{Value: rv.Float()}
	case reflect.Complex64, reflect.Complex128:
		return &Complex{Value: rv.Complex()}
	case reflect.String:
		return &String{Value: rv.String()}
	}
	return newError("unsupported value of type %T", v)
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}
