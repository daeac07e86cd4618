package library

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/labforge/go-conductor/pkg/command"
)

// InfoMicroservice groups the catalog entries of one device or
// service. Commands are keyed by name; every command must carry the
// microservice's name as its own Microservice field. The UUID is the
// microservice's identity and is stamped onto every command added, so
// a wire command carrying the UUID always resolves back to this
// group.
type InfoMicroservice struct {
	Name        string                          `json:"name" yaml:"name"`
	UUID        uuid.UUID                       `json:"uuid" yaml:"uuid"`
	Description string                          `json:"description,omitempty" yaml:"description,omitempty"`
	Commands    map[string]*command.InfoCommand `json:"commands" yaml:"commands"`
}

// NewInfoMicroservice returns an empty catalog group with a fresh
// identity.
func NewInfoMicroservice(name string) *InfoMicroservice {
	return &InfoMicroservice{
		Name:     name,
		UUID:     uuid.New(),
		Commands: make(map[string]*command.InfoCommand),
	}
}

// Add registers a catalog command. The command must name this
// microservice as its owner; it takes on the microservice's UUID.
func (m *InfoMicroservice) Add(cmd *command.InfoCommand) error {
	if cmd.Microservice != m.Name {
		return fmt.Errorf("%w: command %q belongs to microservice %q, not %q",
			ErrNameMismatch, cmd.Name, cmd.Microservice, m.Name)
	}
	if err := cmd.Normalize(); err != nil {
		return err
	}
	cmd.UUID = m.UUID
	m.Commands[cmd.Name] = cmd
	return nil
}

// Get returns a catalog command by name.
func (m *InfoMicroservice) Get(name string) (*command.InfoCommand, error) {
	cmd, ok := m.Commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no command %q", ErrUnknownCommand, m.Name, name)
	}
	return cmd, nil
}

// CommandNames returns the sorted command names of the microservice.
func (m *InfoMicroservice) CommandNames() []string {
	names := make([]string, 0, len(m.Commands))
	for name := range m.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DriverMicroservice groups the executable commands of one device or
// service. As with the catalog form, the UUID identifies the
// microservice and is shared by all its commands.
type DriverMicroservice struct {
	Name        string
	UUID        uuid.UUID
	Description string
	Commands    map[string]*command.DriverCommand
}

// NewDriverMicroservice returns an empty executable group with a
// fresh identity.
func NewDriverMicroservice(name string) *DriverMicroservice {
	return &DriverMicroservice{
		Name:     name,
		UUID:     uuid.New(),
		Commands: make(map[string]*command.DriverCommand),
	}
}

// Add registers an executable command. The command must name this
// microservice as its owner; it takes on the microservice's UUID.
func (m *DriverMicroservice) Add(cmd *command.DriverCommand) error {
	if cmd.Microservice != m.Name {
		return fmt.Errorf("%w: command %q belongs to microservice %q, not %q",
			ErrNameMismatch, cmd.Name, cmd.Microservice, m.Name)
	}
	cmd.UUID = m.UUID
	m.Commands[cmd.Name] = cmd
	return nil
}

// Get returns an executable command by name.
func (m *DriverMicroservice) Get(name string) (*command.DriverCommand, error) {
	cmd, ok := m.Commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no command %q", ErrUnknownCommand, m.Name, name)
	}
	return cmd, nil
}

// ToInfo projects the microservice to its catalog form.
func (m *DriverMicroservice) ToInfo() *InfoMicroservice {
	info := &InfoMicroservice{
		Name:        m.Name,
		UUID:        m.UUID,
		Description: m.Description,
		Commands:    make(map[string]*command.InfoCommand, len(m.Commands)),
	}
	for name, cmd := range m.Commands {
		info.Commands[name] = cmd.ToInfo()
	}
	return info
}
