package classpath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "stubs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	stubs := []*ClassStub{
		{
			Name:  "com.acme.B",
			Super: "java.lang.Object",
			Methods: []MethodStub{
				{Name: "run", Descriptor: "()V"},
			},
		},
		{
			Name:      "com.acme.A",
			Super:     "java.lang.Object",
			Signature: "<T:Ljava/lang/Object;>Ljava/lang/Object;",
			Fields: []FieldStub{
				{Name: "count", Descriptor: "I", AccessFlags: AccStatic},
			},
		},
	}
	if err := s.Save("cafebabe", stubs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load("cafebabe")
	if err != nil || !ok {
		t.Fatalf("load: %v ok=%v", err, ok)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d stubs", len(got))
	}
	// Rows come back ordered by name.
	if got[0].Name != "com.acme.A" || got[1].Name != "com.acme.B" {
		t.Fatalf("order: %s, %s", got[0].Name, got[1].Name)
	}
	if got[0].Signature != "<T:Ljava/lang/Object;>Ljava/lang/Object;" {
		t.Fatalf("signature lost: %q", got[0].Signature)
	}
	if len(got[0].Fields) != 1 || got[0].Fields[0].AccessFlags&AccStatic == 0 {
		t.Fatalf("field flags lost: %+v", got[0].Fields)
	}
}

func TestStoreMissAndReplace(t *testing.T) {
	s, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Load("nope"); err != nil || ok {
		t.Fatalf("unknown checksum should miss, ok=%v err=%v", ok, err)
	}

	if err := s.Save("k", []*ClassStub{{Name: "a.B"}, {Name: "a.C"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("k", []*ClassStub{{Name: "a.D"}}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, ok, err := s.Load("k")
	if err != nil || !ok {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a.D" {
		t.Fatalf("save should replace, got %v", got)
	}
}

func TestEntryChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dep.jar")
	if err := os.WriteFile(path, []byte("archive-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	first, err := EntryChecksum(path)
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	again, err := EntryChecksum(path)
	if err != nil || again != first {
		t.Fatalf("checksum should be stable: %q vs %q", first, again)
	}
	if err := os.WriteFile(path, []byte("changed-bytes"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	changed, err := EntryChecksum(path)
	if err != nil || changed == first {
		t.Fatalf("changed content must change the checksum")
	}
}
