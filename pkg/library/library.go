// Package library holds the two-tier catalog of commands a workflow
// can draw on: microservices keyed by name, commands keyed by name
// within them, and a UUID index over the microservices themselves for
// direct lookup.
package library

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/labforge/go-conductor/pkg/command"
)

// InfoLibrary is the catalog a planner works against: parameter
// specifications and return metadata for every command, no bindings.
type InfoLibrary struct {
	Name          string                       `json:"name" yaml:"name"`
	Description   string                       `json:"description,omitempty" yaml:"description,omitempty"`
	Microservices map[string]*InfoMicroservice `json:"microservices" yaml:"microservices"`
}

// NewInfoLibrary returns an empty catalog.
func NewInfoLibrary(name string) *InfoLibrary {
	return &InfoLibrary{
		Name:          name,
		Microservices: make(map[string]*InfoMicroservice),
	}
}

// Add registers a catalog microservice under its own name.
func (l *InfoLibrary) Add(ms *InfoMicroservice) {
	l.Microservices[ms.Name] = ms
}

// Get returns a catalog microservice by name.
func (l *InfoLibrary) Get(name string) (*InfoMicroservice, error) {
	ms, ok := l.Microservices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMicroservice, name)
	}
	return ms, nil
}

// GetCommand resolves a microservice/command name pair.
func (l *InfoLibrary) GetCommand(microservice, name string) (*command.InfoCommand, error) {
	ms, err := l.Get(microservice)
	if err != nil {
		return nil, err
	}
	return ms.Get(name)
}

// MicroserviceNames returns the sorted microservice names of the
// catalog.
func (l *InfoLibrary) MicroserviceNames() []string {
	names := make([]string, 0, len(l.Microservices))
	for name := range l.Microservices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DriverLibrary is the executable counterpart of the catalog. It is
// safe for concurrent lookup; registration is expected to happen
// during startup but is guarded all the same.
type DriverLibrary struct {
	Name        string
	Description string

	mu            sync.RWMutex
	microservices map[string]*DriverMicroservice
	byUUID        map[uuid.UUID]*DriverMicroservice
}

// NewDriverLibrary returns an empty executable library.
func NewDriverLibrary(name string) *DriverLibrary {
	return &DriverLibrary{
		Name:          name,
		microservices: make(map[string]*DriverMicroservice),
		byUUID:        make(map[uuid.UUID]*DriverMicroservice),
	}
}

// Add registers an executable microservice and indexes it by UUID.
// Re-adding a microservice under the same name replaces it and
// rebuilds the index.
func (l *DriverLibrary) Add(ms *DriverMicroservice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.microservices[ms.Name] = ms
	l.reindex()
}

// Remove drops a microservice from the library.
func (l *DriverLibrary) Remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.microservices, name)
	l.reindex()
}

// reindex rebuilds the UUID index. Callers hold the write lock.
func (l *DriverLibrary) reindex() {
	l.byUUID = make(map[uuid.UUID]*DriverMicroservice)
	for _, ms := range l.microservices {
		if ms.UUID != uuid.Nil {
			l.byUUID[ms.UUID] = ms
		}
	}
}

// Get returns an executable microservice by name.
func (l *DriverLibrary) Get(name string) (*DriverMicroservice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ms, ok := l.microservices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMicroservice, name)
	}
	return ms, nil
}

// GetCommand resolves a microservice/command name pair.
func (l *DriverLibrary) GetCommand(microservice, name string) (*command.DriverCommand, error) {
	ms, err := l.Get(microservice)
	if err != nil {
		return nil, err
	}
	return ms.Get(name)
}

// GetByUUID resolves a microservice directly by its UUID, bypassing
// the name hierarchy. This is the interpreter's lookup path.
func (l *DriverLibrary) GetByUUID(id uuid.UUID) (*DriverMicroservice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ms, ok := l.byUUID[id]
	if !ok {
		return nil, fmt.Errorf("%w: no microservice with uuid %s", ErrUnknownMicroservice, id)
	}
	return ms, nil
}

// MicroserviceNames returns the sorted microservice names of the
// library.
func (l *DriverLibrary) MicroserviceNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.microservices))
	for name := range l.microservices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToInfo projects the executable library to its catalog form.
func (l *DriverLibrary) ToInfo() *InfoLibrary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	info := NewInfoLibrary(l.Name)
	info.Description = l.Description
	for name, ms := range l.microservices {
		info.Microservices[name] = ms.ToInfo()
	}
	return info
}
