// Package parameter implements the typed value containers used by
// command parameters. A Model describes the constraints; Build turns
// it into a Parameter whose every assignment is coerced to the
// declared data type and checked against limits and allowed values.
package parameter

import (
	"fmt"
	"math"
	"reflect"

	"github.com/spf13/cast"
)

// Parameter is a runtime value container. It holds one current value
// plus indirection metadata: when FromVar is set, the concrete value
// is resolved from a workflow's global scope at invocation time and
// may override any literal value held here.
//
// A Parameter built from a Model validates every assignment. A
// Parameter without a model (the wire-tier form produced when a run
// command is decoded) accepts any value; constraints are re-applied
// when the value is transplanted onto a driver command's own
// parameters.
type Parameter struct {
	model *Model
	value any

	Description string
	FromVar     bool
	VarName     string
}

// NewLiteral creates an unconstrained parameter holding v. Used for
// the wire tier, where a run command carries concrete values without
// their authoring-time models.
func NewLiteral(v any) *Parameter {
	return &Parameter{value: v}
}

// Value returns the current value.
func (p *Parameter) Value() any {
	return p.value
}

// Model returns the specification the parameter was built from, or
// nil for an unconstrained parameter.
func (p *Parameter) Model() *Model {
	return p.model
}

// SetVar marks the parameter as indirected through the named workflow
// global.
func (p *Parameter) SetVar(name string) {
	p.FromVar = true
	p.VarName = name
}

// Set assigns a new value. For list parameters every element is
// coerced to the declared type; for scalars the whole value is. After
// coercion the limits and allowed-value checks run. On any failure the
// stored value is left unchanged and the error wraps ErrTypeMismatch,
// ErrOutOfRange or ErrNotAllowed.
func (p *Parameter) Set(v any) error {
	if p.model == nil {
		p.value = v
		return nil
	}
	if v == nil {
		p.value = nil
		return nil
	}

	m := p.model
	if m.List {
		elems, err := toSlice(v)
		if err != nil {
			return fmt.Errorf("%w: parameter %q expects a list, got %T", ErrTypeMismatch, m.Name, v)
		}
		coerced := make([]any, 0, len(elems))
		for _, elem := range elems {
			cv, castErr := castValue(m.DataType, elem)
			if castErr != nil {
				return fmt.Errorf("%w: parameter %q element %v cannot be cast to %s",
					ErrTypeMismatch, m.Name, elem, m.DataType)
			}
			cv = m.round(cv)
			coerced = append(coerced, cv)
		}
		// No element is committed until the whole list validates.
		for _, cv := range coerced {
			if err := m.checkScalar(cv, ErrTypeMismatch); err != nil {
				return err
			}
		}
		p.value = coerced
		return nil
	}

	cv, err := castValue(m.DataType, v)
	if err != nil {
		return fmt.Errorf("%w: parameter %q value %v cannot be cast to %s",
			ErrTypeMismatch, m.Name, v, m.DataType)
	}
	cv = m.round(cv)
	if err := m.checkScalar(cv, ErrTypeMismatch); err != nil {
		return err
	}
	p.value = cv
	return nil
}

// round applies the model's float precision to an already-coerced
// value.
func (m *Model) round(v any) any {
	if m.DataType != TypeFloat || m.Precision == PrecisionUnbounded {
		return v
	}
	f, ok := v.(float64)
	if !ok {
		return v
	}
	scale := math.Pow10(m.Precision)
	return math.Round(f*scale) / scale
}

// Clone returns an independent copy of the parameter. List values are
// copied so a clone never aliases the original's backing slice.
func (p *Parameter) Clone() *Parameter {
	dup := *p
	if elems, ok := p.value.([]any); ok {
		value := make([]any, len(elems))
		copy(value, elems)
		dup.value = value
	}
	return &dup
}

// Arithmetic and comparison delegation. Downstream code treats
// parameters as drop-in values in expressions; since Go has no
// operator overloading these are explicit methods operating on the
// wrapped value. Arithmetic is defined for int and float parameters
// (Add additionally concatenates strings); comparisons are defined for
// every data type.

// Add returns value + other.
func (p *Parameter) Add(other any) (any, error) {
	return p.arith("+", other)
}

// Sub returns value - other.
func (p *Parameter) Sub(other any) (any, error) {
	return p.arith("-", other)
}

// Mul returns value * other.
func (p *Parameter) Mul(other any) (any, error) {
	return p.arith("*", other)
}

// Div returns value / other.
func (p *Parameter) Div(other any) (any, error) {
	return p.arith("/", other)
}

// Pow returns value ** other.
func (p *Parameter) Pow(other any) (any, error) {
	return p.arith("**", other)
}

func (p *Parameter) arith(op string, other any) (any, error) {
	if p.model == nil {
		return nil, fmt.Errorf("arithmetic requires a typed parameter")
	}
	name := p.model.Name
	if p.value == nil {
		return nil, fmt.Errorf("parameter %q has no value", name)
	}
	switch p.model.DataType {
	case TypeInt:
		a := p.value.(int)
		b, err := cast.ToIntE(other)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q cannot apply %s with %v", ErrTypeMismatch, name, op, other)
		}
		switch op {
		case "+":
			return a + b, nil
		case "-":
			return a - b, nil
		case "*":
			return a * b, nil
		case "/":
			if b == 0 {
				return nil, fmt.Errorf("parameter %q division by zero", name)
			}
			return a / b, nil
		case "**":
			return int(math.Pow(float64(a), float64(b))), nil
		}
	case TypeFloat:
		a := p.value.(float64)
		b, err := cast.ToFloat64E(other)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q cannot apply %s with %v", ErrTypeMismatch, name, op, other)
		}
		switch op {
		case "+":
			return a + b, nil
		case "-":
			return a - b, nil
		case "*":
			return a * b, nil
		case "/":
			if b == 0 {
				return nil, fmt.Errorf("parameter %q division by zero", name)
			}
			return a / b, nil
		case "**":
			return math.Pow(a, b), nil
		}
	case TypeString:
		if op == "+" {
			a := p.value.(string)
			b, err := cast.ToStringE(other)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter %q cannot concatenate %v", ErrTypeMismatch, name, other)
			}
			return a + b, nil
		}
	}
	return nil, fmt.Errorf("parameter %q (%s) does not support %s", name, p.model.DataType, op)
}

// Compare compares the wrapped value against other, coercing other to
// the parameter's data type first. Returns -1, 0 or 1.
func (p *Parameter) Compare(other any) (int, error) {
	if p.model == nil {
		return 0, fmt.Errorf("comparison requires a typed parameter")
	}
	if p.value == nil {
		return 0, fmt.Errorf("parameter %q has no value", p.model.Name)
	}
	b, err := castValue(p.model.DataType, other)
	if err != nil {
		return 0, fmt.Errorf("%w: parameter %q cannot compare with %v",
			ErrTypeMismatch, p.model.Name, other)
	}
	return compareValues(p.model.DataType, p.value, b)
}

// Equal reports whether the wrapped value equals other. Incomparable
// values are unequal.
func (p *Parameter) Equal(other any) bool {
	cmp, err := p.Compare(other)
	return err == nil && cmp == 0
}

// Less reports whether the wrapped value is less than other.
func (p *Parameter) Less(other any) (bool, error) {
	cmp, err := p.Compare(other)
	return cmp < 0, err
}

// Greater reports whether the wrapped value is greater than other.
func (p *Parameter) Greater(other any) (bool, error) {
	cmp, err := p.Compare(other)
	return cmp > 0, err
}

// LessOrEqual reports whether the wrapped value is at most other.
func (p *Parameter) LessOrEqual(other any) (bool, error) {
	cmp, err := p.Compare(other)
	return cmp <= 0, err
}

// GreaterOrEqual reports whether the wrapped value is at least other.
func (p *Parameter) GreaterOrEqual(other any) (bool, error) {
	cmp, err := p.Compare(other)
	return cmp >= 0, err
}

// toSlice converts any slice-typed value to []any without touching
// element types.
func toSlice(v any) ([]any, error) {
	if elems, ok := v.([]any); ok {
		out := make([]any, len(elems))
		copy(out, elems)
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("value %v (%T) is not a list", v, v)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
