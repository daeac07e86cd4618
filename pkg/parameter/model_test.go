package parameter

import (
	"errors"
	"reflect"
	"testing"
)

func TestModelNormalize(t *testing.T) {
	tests := []struct {
		name    string
		model   Model
		wantErr error
	}{
		{
			name:  "valid float with limits",
			model: Model{Name: "voltage", DataType: TypeFloat, UpperLimit: 240.0, LowerLimit: 60.0, Default: 120.0},
		},
		{
			name:    "upper limit below lower limit",
			model:   Model{Name: "voltage", DataType: TypeFloat, UpperLimit: 10.0, LowerLimit: 60.0},
			wantErr: ErrSpecification,
		},
		{
			name:  "limits cast from compatible types",
			model: Model{Name: "count", DataType: TypeInt, UpperLimit: "10", LowerLimit: 1.0},
		},
		{
			name:    "uncastable limit reports spec error",
			model:   Model{Name: "count", DataType: TypeInt, UpperLimit: "ten"},
			wantErr: ErrSpecification,
		},
		{
			name:    "default above upper limit",
			model:   Model{Name: "count", DataType: TypeInt, UpperLimit: 10, Default: 11},
			wantErr: ErrSpecification,
		},
		{
			name:    "default below lower limit",
			model:   Model{Name: "count", DataType: TypeInt, LowerLimit: 5, Default: 4},
			wantErr: ErrSpecification,
		},
		{
			name:  "default among allowed values",
			model: Model{Name: "mode", DataType: TypeString, AllowedValues: []any{"fast", "slow"}, Default: "fast"},
		},
		{
			name:    "default outside allowed values",
			model:   Model{Name: "mode", DataType: TypeString, AllowedValues: []any{"fast", "slow"}, Default: "medium"},
			wantErr: ErrSpecification,
		},
		{
			name:  "list default with valid elements",
			model: Model{Name: "temps", DataType: TypeInt, List: true, UpperLimit: 100, LowerLimit: 0, Default: []any{10, 20, 30}},
		},
		{
			name:    "list default with out-of-range element",
			model:   Model{Name: "temps", DataType: TypeInt, List: true, UpperLimit: 100, Default: []any{10, 200}},
			wantErr: ErrSpecification,
		},
		{
			name:    "scalar default where list expected",
			model:   Model{Name: "temps", DataType: TypeInt, List: true, Default: "7"},
			wantErr: ErrSpecification,
		},
		{
			name:    "unknown data type",
			model:   Model{Name: "x", DataType: "complex"},
			wantErr: ErrSpecification,
		},
		{
			name:    "missing name",
			model:   Model{DataType: TypeInt},
			wantErr: ErrSpecification,
		},
		{
			name:    "bad precision",
			model:   Model{Name: "x", DataType: TypeFloat, Precision: -3},
			wantErr: ErrSpecification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Normalize()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Normalize() returned %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Normalize() returned %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestModelNormalizeCastsInPlace(t *testing.T) {
	m := Model{Name: "count", DataType: TypeInt, UpperLimit: "10", LowerLimit: 1.0, Default: "5"}
	if err := m.Normalize(); err != nil {
		t.Fatalf("Normalize() returned %v", err)
	}
	if m.UpperLimit != 10 {
		t.Errorf("upper limit = %v (%T), want int 10", m.UpperLimit, m.UpperLimit)
	}
	if m.LowerLimit != 1 {
		t.Errorf("lower limit = %v (%T), want int 1", m.LowerLimit, m.LowerLimit)
	}
	if m.Default != 5 {
		t.Errorf("default = %v (%T), want int 5", m.Default, m.Default)
	}
}

func TestModelBuildAppliesDefault(t *testing.T) {
	m := Model{Name: "voltage", DataType: TypeFloat, UpperLimit: 240.0, LowerLimit: 60.0, Default: 120.0}
	p, err := m.Build()
	if err != nil {
		t.Fatalf("Build() returned %v", err)
	}
	if p.Value() != 120.0 {
		t.Errorf("value = %v, want 120.0", p.Value())
	}
}

func TestModelBuildListDefaultNotShared(t *testing.T) {
	m := Model{Name: "temps", DataType: TypeInt, List: true, Default: []any{1, 2}}
	p1, err := m.Build()
	if err != nil {
		t.Fatalf("Build() returned %v", err)
	}
	p2, _ := m.Build()

	if err := p1.Set([]any{8, 9}); err != nil {
		t.Fatalf("Set() returned %v", err)
	}
	if !reflect.DeepEqual(p2.Value(), []any{1, 2}) {
		t.Errorf("second instance value = %v, want untouched default [1 2]", p2.Value())
	}
}

func TestModelClone(t *testing.T) {
	m := Model{Name: "mode", DataType: TypeString, AllowedValues: []any{"a", "b"}, Default: "a"}
	if err := m.Normalize(); err != nil {
		t.Fatalf("Normalize() returned %v", err)
	}
	dup := m.Clone()
	dup.AllowedValues[0] = "z"
	if m.AllowedValues[0] != "a" {
		t.Errorf("clone shares allowed values with original")
	}
}
