package command

import (
	"fmt"
	"sync"
)

// Binding pairs a handler with the argument names it consumes. The
// argument list is what stands in for a callable's formal signature:
// driver command construction verifies every name is a declared
// parameter.
type Binding struct {
	Fn   Handler
	Args []string
}

// handlerRegistry is the process-local table behind late binding. A
// driver command authored with a module/function pair instead of a
// direct handler resolves through it at construction time.
type handlerRegistry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

var registry = &handlerRegistry{bindings: make(map[string]Binding)}

func bindingKey(module, function string) string {
	return module + "." + function
}

// RegisterHandler registers a named binding under a module/function
// pair. Re-registering an existing pair is an error; drivers register
// once at startup.
func RegisterHandler(module, function string, b Binding) error {
	if module == "" || function == "" {
		return fmt.Errorf("module and function names are required")
	}
	if b.Fn == nil {
		return fmt.Errorf("binding for %s has nil handler", bindingKey(module, function))
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	key := bindingKey(module, function)
	if _, exists := registry.bindings[key]; exists {
		return fmt.Errorf("handler %s already registered", key)
	}
	registry.bindings[key] = b
	return nil
}

// LookupHandler resolves a module/function pair to its binding.
func LookupHandler(module, function string) (Binding, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	b, ok := registry.bindings[bindingKey(module, function)]
	return b, ok
}

// UnregisterHandler removes a binding. Intended for tests.
func UnregisterHandler(module, function string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.bindings, bindingKey(module, function))
}
