package library

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/labforge/go-conductor/pkg/command"
	"github.com/labforge/go-conductor/pkg/parameter"
)

func sampleDriver(t *testing.T, microservice, name string) *command.DriverCommand {
	t.Helper()
	d, err := command.NewDriver(command.DriverConfig{
		Name:         name,
		Microservice: microservice,
		Parameters: map[string]*parameter.Model{
			"level": {
				Name:     "level",
				DataType: parameter.TypeInt,
				Default:  1,
			},
		},
		Handler: func(args map[string]any) (map[string]any, error) {
			return map[string]any{"level": args["level"]}, nil
		},
		Args:            []string{"level"},
		HasReturn:       true,
		ReturnSignature: map[string]string{"level": "int"},
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}

func TestMicroserviceAddEnforcesOwnership(t *testing.T) {
	ms := NewDriverMicroservice("pump")
	cmd := sampleDriver(t, "valve", "open")
	if err := ms.Add(cmd); !errors.Is(err, ErrNameMismatch) {
		t.Fatalf("got %v, want ErrNameMismatch", err)
	}
}

func TestMicroserviceAddStampsIdentity(t *testing.T) {
	ms := NewDriverMicroservice("pump")
	if ms.UUID == uuid.Nil {
		t.Fatal("microservice has no identity")
	}
	cmd := sampleDriver(t, "pump", "start")
	if err := ms.Add(cmd); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if cmd.UUID != ms.UUID {
		t.Fatalf("command uuid = %s, want the microservice's %s", cmd.UUID, ms.UUID)
	}
}

func TestLibraryLookups(t *testing.T) {
	lib := NewDriverLibrary("bench")
	ms := NewDriverMicroservice("pump")
	cmd := sampleDriver(t, "pump", "start")
	if err := ms.Add(cmd); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lib.Add(ms)

	got, err := lib.GetCommand("pump", "start")
	if err != nil {
		t.Fatalf("GetCommand: %v", err)
	}
	if got != cmd {
		t.Fatal("GetCommand returned a different command")
	}

	byID, err := lib.GetByUUID(ms.UUID)
	if err != nil {
		t.Fatalf("GetByUUID: %v", err)
	}
	if byID != ms {
		t.Fatal("GetByUUID returned a different microservice")
	}

	if _, err := lib.Get("valve"); !errors.Is(err, ErrUnknownMicroservice) {
		t.Fatalf("got %v, want ErrUnknownMicroservice", err)
	}
	if _, err := lib.GetCommand("pump", "stop"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("got %v, want ErrUnknownCommand", err)
	}
	if _, err := lib.GetByUUID(uuid.New()); !errors.Is(err, ErrUnknownMicroservice) {
		t.Fatalf("got %v, want ErrUnknownMicroservice", err)
	}
}

func TestLibraryUUIDResolvesCommandsByName(t *testing.T) {
	lib := NewDriverLibrary("bench")
	ms := NewDriverMicroservice("pump")
	start := sampleDriver(t, "pump", "start")
	stop := sampleDriver(t, "pump", "stop")
	for _, cmd := range []*command.DriverCommand{start, stop} {
		if err := ms.Add(cmd); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	lib.Add(ms)

	byID, err := lib.GetByUUID(ms.UUID)
	if err != nil {
		t.Fatalf("GetByUUID: %v", err)
	}
	got, err := byID.Get("stop")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != stop {
		t.Fatal("uuid lookup resolved the wrong command")
	}
	if _, err := byID.Get("drain"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("got %v, want ErrUnknownCommand", err)
	}
}

func TestLibraryRemoveDropsIndex(t *testing.T) {
	lib := NewDriverLibrary("bench")
	ms := NewDriverMicroservice("pump")
	cmd := sampleDriver(t, "pump", "start")
	if err := ms.Add(cmd); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lib.Add(ms)
	lib.Remove("pump")

	if _, err := lib.GetByUUID(ms.UUID); !errors.Is(err, ErrUnknownMicroservice) {
		t.Fatalf("got %v, want ErrUnknownMicroservice after remove", err)
	}
}

func TestLibraryToInfo(t *testing.T) {
	lib := NewDriverLibrary("bench")
	lib.Description = "test bench instruments"
	ms := NewDriverMicroservice("pump")
	ms.Description = "peristaltic pump"
	cmd := sampleDriver(t, "pump", "start")
	if err := ms.Add(cmd); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lib.Add(ms)

	info := lib.ToInfo()
	if info.Name != "bench" {
		t.Fatalf("name = %q", info.Name)
	}
	if info.Description != "test bench instruments" {
		t.Fatalf("description = %q", info.Description)
	}
	ims, err := info.Get("pump")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ims.UUID != ms.UUID {
		t.Fatal("catalog microservice lost its identity")
	}
	if ims.Description != "peristaltic pump" {
		t.Fatalf("microservice description = %q", ims.Description)
	}
	ic, err := info.GetCommand("pump", "start")
	if err != nil {
		t.Fatalf("GetCommand: %v", err)
	}
	if ic.UUID != ms.UUID {
		t.Fatal("catalog entry lost the microservice identity")
	}
	if _, ok := ic.Parameters["level"]; !ok {
		t.Fatal("catalog entry lost parameters")
	}
}

func TestCatalogYAMLUsesSnakeCaseKeys(t *testing.T) {
	lib := NewDriverLibrary("bench")
	ms := NewDriverMicroservice("pump")
	cmd := sampleDriver(t, "pump", "start")
	if err := ms.Add(cmd); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lib.Add(ms)

	out, err := yaml.Marshal(lib.ToInfo())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(out)
	for _, key := range []string{"has_return:", "return_signature:", "data_type:"} {
		if !strings.Contains(text, key) {
			t.Fatalf("catalog yaml missing key %q:\n%s", key, text)
		}
	}
	for _, key := range []string{"hasreturn:", "returnsignature:", "datatype:"} {
		if strings.Contains(text, key) {
			t.Fatalf("catalog yaml leaked unmapped key %q:\n%s", key, text)
		}
	}
}

func TestMicroserviceNamesSorted(t *testing.T) {
	lib := NewDriverLibrary("bench")
	lib.Add(NewDriverMicroservice("valve"))
	lib.Add(NewDriverMicroservice("pump"))

	names := lib.MicroserviceNames()
	if len(names) != 2 || names[0] != "pump" || names[1] != "valve" {
		t.Fatalf("names = %v", names)
	}
}
