// Package drivers ships the built-in demonstration drivers. The
// microwave synthesizer is a virtual instrument with enough state to
// exercise session handling, ordering constraints and result passing
// in workflows without any hardware attached.
package drivers

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/library"
	"github.com/labforge/go-conductor/pkg/parameter"
)

// MicrowaveModule is the registry module name of the microwave
// synthesizer bindings.
const MicrowaveModule = "microwave"

// MicrowaveSynthesizer is a virtual microwave synthesizer. Every
// operation but session allocation requires the current session id,
// and the lid, vial and heating states gate which operations are
// legal.
type MicrowaveSynthesizer struct {
	mu sync.Mutex

	sessionID   string
	lidOpen     bool
	vialLoaded  bool
	vialNumber  int
	heating     bool
	temperature int
	duration    int
	pressure    float64
	paramsSet   bool
}

// NewMicrowaveSynthesizer returns an idle synthesizer with the lid
// closed and no vial loaded.
func NewMicrowaveSynthesizer() *MicrowaveSynthesizer {
	return &MicrowaveSynthesizer{}
}

func (s *MicrowaveSynthesizer) checkSession(args map[string]any) error {
	id, _ := args["session_id"].(string)
	if id == "" || id != s.sessionID {
		return fmt.Errorf("incorrect session id")
	}
	return nil
}

// AllocateSession starts a new session and resets the instrument
// state. Must be called before any other operation.
func (s *MicrowaveSynthesizer) AllocateSession(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = uuid.NewString()
	s.lidOpen = false
	s.vialLoaded = false
	s.vialNumber = 0
	s.heating = false
	s.paramsSet = false
	return map[string]any{"session_id": s.sessionID}, nil
}

// OpenLid opens the lid. Fails when it is already open.
func (s *MicrowaveSynthesizer) OpenLid(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	if s.lidOpen {
		return nil, fmt.Errorf("lid is already open")
	}
	s.lidOpen = true
	return map[string]any{"status": "lid_open"}, nil
}

// CloseLid closes the lid. Fails when it is already closed.
func (s *MicrowaveSynthesizer) CloseLid(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	if !s.lidOpen {
		return nil, fmt.Errorf("lid is already closed")
	}
	s.lidOpen = false
	return map[string]any{"status": "lid_closed"}, nil
}

// LoadVial loads a numbered vial. The lid must be open and no vial
// may already be loaded.
func (s *MicrowaveSynthesizer) LoadVial(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	if !s.lidOpen {
		return nil, fmt.Errorf("vial cannot be loaded while the lid is closed")
	}
	if s.vialLoaded {
		return nil, fmt.Errorf("a vial is already loaded")
	}
	num, ok := args["vial_num"].(int)
	if !ok {
		return nil, fmt.Errorf("vial_num is required")
	}
	s.vialNumber = num
	s.vialLoaded = true
	return map[string]any{"status": fmt.Sprintf("vial %d loaded", num)}, nil
}

// UnloadVial removes the loaded vial. The lid must be open and a vial
// must be loaded.
func (s *MicrowaveSynthesizer) UnloadVial(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	if !s.lidOpen {
		return nil, fmt.Errorf("vial cannot be unloaded while the lid is closed")
	}
	if !s.vialLoaded {
		return nil, fmt.Errorf("no vial is loaded")
	}
	num := s.vialNumber
	s.vialNumber = 0
	s.vialLoaded = false
	return map[string]any{"status": fmt.Sprintf("vial %d unloaded", num)}, nil
}

// UpdateHeatingParameters sets duration, temperature and pressure for
// the next heating run.
func (s *MicrowaveSynthesizer) UpdateHeatingParameters(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	duration, ok := args["duration"].(int)
	if !ok {
		return nil, fmt.Errorf("duration is required")
	}
	temperature, ok := args["temperature"].(int)
	if !ok {
		return nil, fmt.Errorf("temperature is required")
	}
	pressure, ok := args["pressure"].(float64)
	if !ok {
		return nil, fmt.Errorf("pressure is required")
	}
	s.duration = duration
	s.temperature = temperature
	s.pressure = pressure
	s.paramsSet = true
	return map[string]any{
		"status": fmt.Sprintf("set to heat for %d mins, at temperature %d and pressure %v",
			duration, temperature, pressure),
	}, nil
}

// HeatVial starts heating. The lid must be closed and the heating
// parameters set.
func (s *MicrowaveSynthesizer) HeatVial(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	if s.lidOpen {
		return nil, fmt.Errorf("lid must be closed before heating")
	}
	if !s.paramsSet {
		return nil, fmt.Errorf("heating parameters are not set")
	}
	s.heating = true
	return map[string]any{"status": "vial heating"}, nil
}

// GetPercentConversion reports the conversion of the synthesis run.
// Only meaningful after heating.
func (s *MicrowaveSynthesizer) GetPercentConversion(args map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSession(args); err != nil {
		return nil, err
	}
	if !s.heating {
		return nil, fmt.Errorf("conversion is only available after heating")
	}
	return map[string]any{"percent_conversion": rand.Float64()}, nil
}

// Register registers the synthesizer's handlers under the microwave
// module so commands authored with module/function pairs resolve to
// it.
func (s *MicrowaveSynthesizer) Register() error {
	bindings := map[string]command.Binding{
		"allocate_session":          {Fn: s.AllocateSession},
		"open_lid":                  {Fn: s.OpenLid, Args: []string{"session_id"}},
		"close_lid":                 {Fn: s.CloseLid, Args: []string{"session_id"}},
		"load_vial":                 {Fn: s.LoadVial, Args: []string{"vial_num", "session_id"}},
		"unload_vial":               {Fn: s.UnloadVial, Args: []string{"session_id"}},
		"update_heating_parameters": {Fn: s.UpdateHeatingParameters, Args: []string{"duration", "temperature", "pressure", "session_id"}},
		"heat_vial":                 {Fn: s.HeatVial, Args: []string{"session_id"}},
		"get_percent_conversion":    {Fn: s.GetPercentConversion, Args: []string{"session_id"}},
	}
	for function, b := range bindings {
		if err := command.RegisterHandler(MicrowaveModule, function, b); err != nil {
			return err
		}
	}
	return nil
}

var builtinOnce sync.Once
var builtinErr error

// RegisterBuiltins registers the handlers of every built-in driver so
// library definitions can bind to them by module and function name.
// Safe to call more than once.
func RegisterBuiltins() error {
	builtinOnce.Do(func() {
		builtinErr = NewMicrowaveSynthesizer().Register()
	})
	return builtinErr
}

func sessionParam() *parameter.Model {
	return &parameter.Model{
		Name:        "session_id",
		DataType:    parameter.TypeString,
		Description: "id of the current session",
	}
}

// NewMicrowaveLibrary builds a driver library exposing one microwave
// synthesizer. The synthesizer's handlers are bound directly, so the
// library is self-contained and needs no registry entries.
func NewMicrowaveLibrary() (*library.DriverLibrary, error) {
	s := NewMicrowaveSynthesizer()

	specs := []command.DriverConfig{
		{
			Name:            "allocate_session",
			Description:     "Allocates a session. Must be called before any other operation.",
			Handler:         s.AllocateSession,
			HasReturn:       true,
			ReturnSignature: map[string]string{"session_id": "string"},
		},
		{
			Name:        "open_lid",
			Description: "Opens the lid. Must precede loading a vial.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
			},
			Handler:         s.OpenLid,
			Args:            []string{"session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"status": "string"},
		},
		{
			Name:        "close_lid",
			Description: "Closes the lid. Must precede heating.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
			},
			Handler:         s.CloseLid,
			Args:            []string{"session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"status": "string"},
		},
		{
			Name:        "load_vial",
			Description: "Loads a vial. The lid must be open.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
				"vial_num": {
					Name:        "vial_num",
					DataType:    parameter.TypeInt,
					LowerLimit:  1,
					UpperLimit:  10,
					Description: "number of the vial to load",
				},
			},
			Handler:         s.LoadVial,
			Args:            []string{"vial_num", "session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"status": "string"},
		},
		{
			Name:        "unload_vial",
			Description: "Unloads the current vial. The lid must be open.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
			},
			Handler:         s.UnloadVial,
			Args:            []string{"session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"status": "string"},
		},
		{
			Name:        "update_heating_parameters",
			Description: "Sets duration, temperature and pressure for the next run.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
				"duration": {
					Name:        "duration",
					DataType:    parameter.TypeInt,
					LowerLimit:  1,
					UpperLimit:  120,
					Description: "heating duration in minutes",
				},
				"temperature": {
					Name:        "temperature",
					DataType:    parameter.TypeInt,
					LowerLimit:  25,
					UpperLimit:  100,
					Description: "heating temperature in celsius",
				},
				"pressure": {
					Name:        "pressure",
					DataType:    parameter.TypeFloat,
					LowerLimit:  1.0,
					UpperLimit:  10.0,
					Precision:   2,
					Description: "heating pressure in atm",
				},
			},
			Handler:         s.UpdateHeatingParameters,
			Args:            []string{"duration", "temperature", "pressure", "session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"status": "string"},
		},
		{
			Name:        "heat_vial",
			Description: "Heats the loaded vial. The lid must be closed and parameters set.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
			},
			Handler:         s.HeatVial,
			Args:            []string{"session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"status": "string"},
		},
		{
			Name:        "get_percent_conversion",
			Description: "Reports the conversion of the synthesis run after heating.",
			Parameters: map[string]*parameter.Model{
				"session_id": sessionParam(),
			},
			Handler:         s.GetPercentConversion,
			Args:            []string{"session_id"},
			HasReturn:       true,
			ReturnSignature: map[string]string{"percent_conversion": "float"},
		},
	}

	ms := library.NewDriverMicroservice(MicrowaveModule)
	ms.Description = "single-vial microwave synthesizer"
	for _, cfg := range specs {
		cfg.Microservice = MicrowaveModule
		cmd, err := command.NewDriver(cfg)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", cfg.Name, err)
		}
		if err := ms.Add(cmd); err != nil {
			return nil, err
		}
	}

	lib := library.NewDriverLibrary("microwave_demo")
	lib.Description = "demo library for the built-in microwave driver"
	lib.Add(ms)
	return lib, nil
}
