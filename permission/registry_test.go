package permission

import (
	"reflect"
	"testing"
)

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, n := range names {
		if _, err := r.Register(n); err != nil {
			t.Fatalf("register %q: %v", n, err)
		}
	}
	r.Freeze()
	return r
}

func TestRegisterAssignsSequentialBits(t *testing.T) {
	r := NewRegistry()
	for i, name := range []string{"read", "write", "delete"} {
		bit, err := r.Register(name)
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		if bit != i {
			t.Fatalf("expected bit %d for %s, got %d", i, name, bit)
		}
	}
	if bit, _ := r.Register("write"); bit != 1 {
		t.Fatalf("re-register should return existing bit, got %d", bit)
	}
	if bit, _ := r.Bit(FullAccess); bit != 63 {
		t.Fatalf("full access must use root bit, got %d", bit)
	}
}

func TestRegisterRejectsAfterFreezeAndEmpty(t *testing.T) {
	r := newTestRegistry(t, "read")
	if _, err := r.Register("write"); err == nil {
		t.Fatal("expected frozen registry error")
	}
	if _, err := NewRegistry().Register(""); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestRegisterLimit(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 63; i++ {
		if _, err := r.Register(string(rune('a'+i%26)) + string(rune('A'+i/26))); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	if _, err := r.Register("overflow"); err == nil {
		t.Fatal("expected limit error once the root bit is reached")
	}
}

func TestAllows(t *testing.T) {
	r := newTestRegistry(t, "read", "write", "delete")

	m, err := r.Compile([]string{"read", "write"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !r.Allows(m, "write") {
		t.Fatal("expected write granted")
	}
	if r.Allows(m, "delete") {
		t.Fatal("delete must not be granted")
	}
	if r.Allows(m, "unknown") {
		t.Fatal("unregistered permission must not be granted without full access")
	}

	root, err := r.Compile([]string{FullAccess})
	if err != nil {
		t.Fatalf("compile root: %v", err)
	}
	for _, p := range []string{"read", "delete", "anything"} {
		if !r.Allows(root, p) {
			t.Fatalf("full access should grant %s", p)
		}
	}
}

func TestCompileUnknownPermission(t *testing.T) {
	r := newTestRegistry(t, "read")
	if _, err := r.Compile([]string{"read", "fly"}); err == nil {
		t.Fatal("expected error for unregistered permission")
	}
}

func TestNamesSorted(t *testing.T) {
	r := newTestRegistry(t, "write", "read")
	m, _ := r.Compile([]string{"write", "read", FullAccess})
	got := r.Names(m)
	want := []string{"full_access", "read", "write"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMaskSetClear(t *testing.T) {
	var m Mask64
	m = m.Set(3).Set(70)
	if !m.Has(3) || m.Has(4) || m.Has(70) {
		t.Fatalf("unexpected mask %b", m)
	}
	m = m.Clear(3)
	if m.Raw() != 0 {
		t.Fatalf("expected empty mask, got %b", m)
	}
}
