package roots

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestRootsCommand_PrintsRootsInOrderAndMarksMissing(t *testing.T) {
	tree := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tree, "art", "runtime"), 0o755); err != nil {
		t.Fatalf("os.MkdirAll() error = %v", err)
	}

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, "-s", "art/runtime", "-s", "dalvik"})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	expected := fmt.Sprintf("1. %s\n2. %s (missing)\n",
		filepath.Join(tree, "art", "runtime"),
		filepath.Join(tree, "dalvik"))

	if out.String() != expected {
		t.Fatalf("output = %q, want %q", out.String(), expected)
	}
}

func TestRootsCommand_ReadsConfigFile(t *testing.T) {
	tree := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "dirs.yaml")
	if err := os.WriteFile(cfgPath, []byte("search_dirs: [bionic/libc]\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, "-C", cfgPath})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	expected := fmt.Sprintf("1. %s (missing)\n", filepath.Join(tree, "bionic", "libc"))
	if out.String() != expected {
		t.Fatalf("output = %q, want %q", out.String(), expected)
	}
}
