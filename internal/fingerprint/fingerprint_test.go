package fingerprint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pargo/cargo-pargo/internal/errs"
)

func TestFile(t *testing.T) {
	tmpDir := t.TempDir()
	tmpPath := filepath.Join(tmpDir, "pargo.rs")

	if err := os.WriteFile(tmpPath, []byte(`fn main() { println!("a"); }`), 0644); err != nil {
		t.Fatal(err)
	}

	fp1, err := File(tmpPath)
	if err != nil {
		t.Fatal(err)
	}

	fp2, err := File(tmpPath)
	if err != nil {
		t.Fatal(err)
	}

	if fp1 != fp2 {
		t.Errorf("fingerprint mismatch: %x != %x", fp1, fp2)
	}

	if fp1 != Bytes([]byte(`fn main() { println!("a"); }`)) {
		t.Error("file fingerprint should equal fingerprint of the same bytes")
	}

	// a single changed byte must change the fingerprint
	if err := os.WriteFile(tmpPath, []byte(`fn main() { println!("b"); }`), 0644); err != nil {
		t.Fatal(err)
	}

	fp3, err := File(tmpPath)
	if err != nil {
		t.Fatal(err)
	}

	if fp1 == fp3 {
		t.Error("fingerprint should change when content changes")
	}
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.rs"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errs.Is(err, errs.KindIO) {
		t.Errorf("expected io kind, got %q", errs.KindOf(err))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected fs.ErrNotExist in chain")
	}
}

func TestBytes(t *testing.T) {
	for _, tc := range []struct {
		name  string
		a, b  string
		equal bool
	}{
		{name: "identical", a: "fn main() {}", b: "fn main() {}", equal: true},
		{name: "whitespace", a: "fn main() {}", b: "fn main() { }", equal: false},
		{name: "empty", a: "", b: "", equal: true},
		{name: "empty vs content", a: "", b: "x", equal: false},
		{name: "trailing newline", a: "x", b: "x\n", equal: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			same := Bytes([]byte(tc.a)) == Bytes([]byte(tc.b))
			if same != tc.equal {
				t.Errorf("fingerprints equal = %v, want %v", same, tc.equal)
			}
		})
	}
}
