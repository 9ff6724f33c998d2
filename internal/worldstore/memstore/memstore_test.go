package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/craftops/regionpress/internal/worldstore"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Write(ctx, "r.0.0.mca", []byte{1, 2}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := s.Read(ctx, "r.0.0.mca")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string([]byte{1, 2}) {
		t.Errorf("Read() = %v, want [1 2]", got)
	}

	if err := s.Delete(ctx, "r.0.0.mca"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Read(ctx, "r.0.0.mca"); !errors.Is(err, worldstore.ErrNotFound) {
		t.Errorf("Read(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "r.0.0.mca"); !errors.Is(err, worldstore.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestList_Sorted(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, name := range []string{"r.1.0.mca", "r.-1.0.mca", "r.0.0.mca"} {
		if err := s.Write(ctx, name, nil); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"r.-1.0.mca", "r.0.0.mca", "r.1.0.mca"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestWrite_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := New()

	data := []byte{1, 2, 3}
	if err := s.Write(ctx, "r.0.0.mca", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 99

	got, err := s.Read(ctx, "r.0.0.mca")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 {
		t.Error("caller mutation leaked into the store")
	}
}
