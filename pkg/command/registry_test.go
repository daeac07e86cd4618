package command

import (
	"testing"
)

func noopHandler(args map[string]any) (map[string]any, error) {
	return nil, nil
}

func TestRegisterAndLookupHandler(t *testing.T) {
	if err := RegisterHandler("mod", "fn", Binding{Fn: noopHandler, Args: []string{"a"}}); err != nil {
		t.Fatalf("RegisterHandler: %v", err)
	}
	defer UnregisterHandler("mod", "fn")

	b, ok := LookupHandler("mod", "fn")
	if !ok {
		t.Fatal("binding not found")
	}
	if b.Fn == nil || len(b.Args) != 1 || b.Args[0] != "a" {
		t.Fatalf("binding = %+v", b)
	}
}

func TestRegisterHandlerRejectsDuplicates(t *testing.T) {
	if err := RegisterHandler("mod", "dup", Binding{Fn: noopHandler}); err != nil {
		t.Fatalf("RegisterHandler: %v", err)
	}
	defer UnregisterHandler("mod", "dup")

	if err := RegisterHandler("mod", "dup", Binding{Fn: noopHandler}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegisterHandlerRejectsInvalidInput(t *testing.T) {
	if err := RegisterHandler("", "fn", Binding{Fn: noopHandler}); err == nil {
		t.Fatal("expected empty module to fail")
	}
	if err := RegisterHandler("mod", "", Binding{Fn: noopHandler}); err == nil {
		t.Fatal("expected empty function to fail")
	}
	if err := RegisterHandler("mod", "nilfn", Binding{}); err == nil {
		t.Fatal("expected nil handler to fail")
	}
}

func TestUnregisterHandler(t *testing.T) {
	if err := RegisterHandler("mod", "gone", Binding{Fn: noopHandler}); err != nil {
		t.Fatalf("RegisterHandler: %v", err)
	}
	UnregisterHandler("mod", "gone")
	if _, ok := LookupHandler("mod", "gone"); ok {
		t.Fatal("binding still present after unregister")
	}
}
