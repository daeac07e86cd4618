package parameter

import (
	"fmt"

	"github.com/spf13/cast"
)

// DataType identifies the primitive type a parameter holds.
type DataType string

const (
	TypeString DataType = "string"
	TypeInt    DataType = "int"
	TypeFloat  DataType = "float"
	TypeBool   DataType = "bool"
)

// Valid reports whether the data type is one of the supported
// primitives.
func (d DataType) Valid() bool {
	switch d {
	case TypeString, TypeInt, TypeFloat, TypeBool:
		return true
	}
	return false
}

// castValue coerces v to the Go representation of the data type:
// string, int, float64 or bool. Coercion is best effort in the same
// sense the cast package is: "7" casts to int 7, 3.9 truncates to 3,
// "yes" casts to bool true.
func castValue(d DataType, v any) (any, error) {
	switch d {
	case TypeString:
		return cast.ToStringE(v)
	case TypeInt:
		return cast.ToIntE(v)
	case TypeFloat:
		return cast.ToFloat64E(v)
	case TypeBool:
		return cast.ToBoolE(v)
	}
	return nil, fmt.Errorf("unsupported data type %q", d)
}

// compareValues compares two already-coerced values of the same data
// type. Returns -1, 0 or 1. Booleans order false before true.
func compareValues(d DataType, a, b any) (int, error) {
	switch d {
	case TypeString:
		av, bv := a.(string), b.(string)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		}
		return 0, nil
	case TypeInt:
		av, bv := a.(int), b.(int)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		}
		return 0, nil
	case TypeFloat:
		av, bv := a.(float64), b.(float64)
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		}
		return 0, nil
	case TypeBool:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		}
		return 1, nil
	}
	return 0, fmt.Errorf("unsupported data type %q", d)
}
