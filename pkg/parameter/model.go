package parameter

import (
	"fmt"
)

// PrecisionUnbounded disables float rounding on assignment.
const PrecisionUnbounded = -1

// Model is the declarative specification of a parameter. It is
// authored once per command parameter, validated by Normalize, and
// then used repeatedly as a factory for constrained Parameter values.
//
// Limits, allowed values and the default must all match DataType after
// coercion. When List is set, Default must be a list whose every
// element satisfies the limits and allowed values; otherwise Default
// itself must satisfy them.
type Model struct {
	Name          string         `mapstructure:"name" json:"name" yaml:"name"`
	DataType      DataType       `mapstructure:"data_type" json:"data_type" yaml:"data_type"`
	Precision     int            `mapstructure:"precision" json:"precision,omitempty" yaml:"precision,omitempty"`
	UpperLimit    any            `mapstructure:"upper_limit" json:"upper_limit,omitempty" yaml:"upper_limit,omitempty"`
	LowerLimit    any            `mapstructure:"lower_limit" json:"lower_limit,omitempty" yaml:"lower_limit,omitempty"`
	AllowedValues []any          `mapstructure:"allowed_values" json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
	Optional      bool           `mapstructure:"optional" json:"optional,omitempty" yaml:"optional,omitempty"`
	List          bool           `mapstructure:"list" json:"list,omitempty" yaml:"list,omitempty"`
	Default       any            `mapstructure:"default" json:"default,omitempty" yaml:"default,omitempty"`
	FromVar       bool           `mapstructure:"from_var" json:"from_var,omitempty" yaml:"from_var,omitempty"`
	VarName       string         `mapstructure:"var_name" json:"var_name,omitempty" yaml:"var_name,omitempty"`
	Description   string         `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`

	normalized bool
}

// Normalize coerces the model's limits, allowed values and default to
// the declared data type and validates the model. The order matters:
// casts run first and swallow their own failures, so that the explicit
// validation steps afterwards report the real type or range problem
// instead of an opaque cast error.
//
// Normalize is idempotent; a model that has normalized once returns
// nil immediately.
func (m *Model) Normalize() error {
	if m.normalized {
		return nil
	}

	if m.Name == "" {
		return fmt.Errorf("%w: model name is required", ErrSpecification)
	}
	if !m.DataType.Valid() {
		return fmt.Errorf("%w: parameter %q has unsupported data type %q", ErrSpecification, m.Name, m.DataType)
	}
	if m.Precision == 0 {
		m.Precision = PrecisionUnbounded
	}
	if m.Precision != PrecisionUnbounded && m.Precision < 1 {
		return fmt.Errorf("%w: parameter %q precision must be >= 1 or unbounded", ErrSpecification, m.Name)
	}

	// Best-effort casts. Failures are deliberately left uncast so the
	// validation below reports them with an accurate message.
	m.castLimits()
	m.castAllowedValues()
	m.castDefault()

	if err := m.validateLimits(); err != nil {
		return err
	}
	if err := m.validateAllowedValues(); err != nil {
		return err
	}
	if err := m.validateDefault(); err != nil {
		return err
	}

	m.normalized = true
	return nil
}

func (m *Model) castLimits() {
	if m.UpperLimit != nil {
		if v, err := castValue(m.DataType, m.UpperLimit); err == nil {
			m.UpperLimit = v
		}
	}
	if m.LowerLimit != nil {
		if v, err := castValue(m.DataType, m.LowerLimit); err == nil {
			m.LowerLimit = v
		}
	}
}

func (m *Model) castAllowedValues() {
	cast := make([]any, 0, len(m.AllowedValues))
	for _, elem := range m.AllowedValues {
		v, err := castValue(m.DataType, elem)
		if err != nil {
			return // leave the whole list uncast
		}
		cast = append(cast, v)
	}
	m.AllowedValues = cast
}

func (m *Model) castDefault() {
	if m.Default == nil {
		return
	}
	if m.List {
		elems, err := toSlice(m.Default)
		if err != nil {
			return
		}
		cast := make([]any, 0, len(elems))
		for _, elem := range elems {
			v, castErr := castValue(m.DataType, elem)
			if castErr != nil {
				return
			}
			cast = append(cast, v)
		}
		m.Default = cast
		return
	}
	if v, err := castValue(m.DataType, m.Default); err == nil {
		m.Default = v
	}
}

func (m *Model) validateLimits() error {
	if m.UpperLimit != nil && !matchesType(m.DataType, m.UpperLimit) {
		return fmt.Errorf("%w: parameter %q upper limit %v (%T) does not match data type %s",
			ErrSpecification, m.Name, m.UpperLimit, m.UpperLimit, m.DataType)
	}
	if m.LowerLimit != nil && !matchesType(m.DataType, m.LowerLimit) {
		return fmt.Errorf("%w: parameter %q lower limit %v (%T) does not match data type %s",
			ErrSpecification, m.Name, m.LowerLimit, m.LowerLimit, m.DataType)
	}
	if m.UpperLimit != nil && m.LowerLimit != nil {
		cmp, err := compareValues(m.DataType, m.UpperLimit, m.LowerLimit)
		if err != nil {
			return fmt.Errorf("%w: parameter %q: %v", ErrSpecification, m.Name, err)
		}
		if cmp < 0 {
			return fmt.Errorf("%w: parameter %q upper limit %v is below lower limit %v",
				ErrSpecification, m.Name, m.UpperLimit, m.LowerLimit)
		}
	}
	return nil
}

func (m *Model) validateAllowedValues() error {
	for _, elem := range m.AllowedValues {
		if !matchesType(m.DataType, elem) {
			return fmt.Errorf("%w: parameter %q allowed value %v (%T) does not match data type %s",
				ErrSpecification, m.Name, elem, elem, m.DataType)
		}
	}
	return nil
}

func (m *Model) validateDefault() error {
	if m.Default == nil {
		return nil
	}
	if m.List {
		elems, ok := m.Default.([]any)
		if !ok {
			return fmt.Errorf("%w: parameter %q default %v (%T) is not a list",
				ErrSpecification, m.Name, m.Default, m.Default)
		}
		for _, elem := range elems {
			if err := m.checkScalar(elem, ErrSpecification); err != nil {
				return err
			}
		}
		return nil
	}
	return m.checkScalar(m.Default, ErrSpecification)
}

// checkScalar validates one already-coerced value against the model's
// type, limits and allowed values, wrapping failures in base. The base
// error distinguishes authoring-time checks (ErrSpecification) from
// runtime assignment checks (ErrTypeMismatch and friends).
func (m *Model) checkScalar(v any, base error) error {
	if !matchesType(m.DataType, v) {
		if base == ErrSpecification {
			return fmt.Errorf("%w: parameter %q default %v (%T) does not match data type %s",
				base, m.Name, v, v, m.DataType)
		}
		return fmt.Errorf("%w: parameter %q value %v (%T) does not match data type %s",
			base, m.Name, v, v, m.DataType)
	}

	if m.UpperLimit != nil {
		if cmp, err := compareValues(m.DataType, v, m.UpperLimit); err == nil && cmp > 0 {
			if base == ErrSpecification {
				return fmt.Errorf("%w: parameter %q default %v exceeds upper limit %v",
					base, m.Name, v, m.UpperLimit)
			}
			return fmt.Errorf("%w: parameter %q value %v exceeds upper limit %v",
				ErrOutOfRange, m.Name, v, m.UpperLimit)
		}
	}
	if m.LowerLimit != nil {
		if cmp, err := compareValues(m.DataType, v, m.LowerLimit); err == nil && cmp < 0 {
			if base == ErrSpecification {
				return fmt.Errorf("%w: parameter %q default %v is below lower limit %v",
					base, m.Name, v, m.LowerLimit)
			}
			return fmt.Errorf("%w: parameter %q value %v is below lower limit %v",
				ErrOutOfRange, m.Name, v, m.LowerLimit)
		}
	}
	if len(m.AllowedValues) > 0 {
		found := false
		for _, allowed := range m.AllowedValues {
			if cmp, err := compareValues(m.DataType, v, allowed); err == nil && cmp == 0 {
				found = true
				break
			}
		}
		if !found {
			if base == ErrSpecification {
				return fmt.Errorf("%w: parameter %q default %v is not one of %v",
					base, m.Name, v, m.AllowedValues)
			}
			return fmt.Errorf("%w: parameter %q value %v is not one of %v",
				ErrNotAllowed, m.Name, v, m.AllowedValues)
		}
	}
	return nil
}

// Build normalizes the model and produces a new Parameter bound to it,
// carrying the model's default value and indirection flags.
func (m *Model) Build() (*Parameter, error) {
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	p := &Parameter{
		model:       m,
		Description: m.Description,
		FromVar:     m.FromVar,
		VarName:     m.VarName,
	}
	if m.Default != nil {
		if m.List {
			// Defaults were validated during Normalize; copy so instances
			// never share the model's backing slice.
			elems := m.Default.([]any)
			value := make([]any, len(elems))
			copy(value, elems)
			p.value = value
		} else {
			p.value = m.Default
		}
	}
	return p, nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	dup := *m
	if m.AllowedValues != nil {
		dup.AllowedValues = make([]any, len(m.AllowedValues))
		copy(dup.AllowedValues, m.AllowedValues)
	}
	if elems, ok := m.Default.([]any); ok {
		def := make([]any, len(elems))
		copy(def, elems)
		dup.Default = def
	}
	return &dup
}

// matchesType reports whether v already has the Go representation of
// the declared data type.
func matchesType(d DataType, v any) bool {
	switch d {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeInt:
		_, ok := v.(int)
		return ok
	case TypeFloat:
		_, ok := v.(float64)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	}
	return false
}
