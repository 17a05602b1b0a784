package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindModuleRoot(t *testing.T) {
	root, err := FindModuleRoot()
	if err != nil {
		t.Fatalf("FindModuleRoot returned error: %v", err)
	}
	if root == "" {
		t.Fatal("FindModuleRoot returned empty string")
	}

	goMod := filepath.Join(root, "go.mod")
	if _, err := os.Stat(goMod); err != nil {
		t.Fatalf("go.mod not found at %s: %v", goMod, err)
	}
}

func TestWriteTree(t *testing.T) {
	base := t.TempDir()
	WriteTree(t, base, map[string]string{
		"Pargo.toml":    "[dependencies]\n",
		"src/lib.rs":    "pub fn f() {}",
		"empty/nested/": "",
	})

	data, err := os.ReadFile(filepath.Join(base, "src", "lib.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pub fn f() {}" {
		t.Errorf("unexpected content %q", data)
	}

	info, err := os.Stat(filepath.Join(base, "empty", "nested"))
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory empty/nested, err=%v", err)
	}
}

func TestChdir(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	t.Run("inner", func(t *testing.T) {
		Chdir(t, dir)
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		resolved, _ := filepath.EvalSymlinks(dir)
		if wd != dir && wd != resolved {
			t.Errorf("expected working directory %s, got %s", dir, wd)
		}
	})

	wd, _ := os.Getwd()
	if wd != orig {
		t.Errorf("working directory not restored: %s", wd)
	}
}
