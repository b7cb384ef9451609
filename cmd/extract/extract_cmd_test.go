package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/hdrmirror/headers"
	"github.com/LegacyCodeHQ/hdrmirror/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("os.MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
}

// setupTree creates an AOSP-like tree and returns (treeRoot, outDir, sourceFile).
func setupTree(t *testing.T) (string, string, string) {
	t.Helper()
	tmp := t.TempDir()
	tree := filepath.Join(tmp, "aosp")
	out := filepath.Join(tmp, "jni", "include")

	writeFile(t, filepath.Join(tree, "art", "runtime", "runtime.h"), "#include \"base/macros.h\"\n")
	writeFile(t, filepath.Join(tree, "art", "runtime", "base", "macros.h"), "#include <stddef.h>\n")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatalf("os.MkdirAll() error = %v", err)
	}

	source := filepath.Join(tmp, "jni", "hook.cpp")
	writeFile(t, source, "#include \"runtime.h\"\n#include <jni.h>\n")
	return tree, out, source
}

func TestExtractCommand_CopiesHeadersAndReportsMissing(t *testing.T) {
	tree, out, source := setupTree(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, source, "-o", out, "-s", "art/runtime"})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	for _, rel := range []string{"art/runtime/runtime.h", "art/runtime/base/macros.h"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected %s to be copied: %v", rel, err)
		}
	}
	if got, want := stdout.String(), "stddef.h not found\njni.h not found\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	if !strings.Contains(stderr.String(), "Copied 2 headers") {
		t.Fatalf("expected summary on stderr, got %q", stderr.String())
	}
}

func TestExtractCommand_PrintsDOTGraph(t *testing.T) {
	tree, out, source := setupTree(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, source, "-o", out, "-s", "art/runtime", "-g", "dot", "-q"})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	output := stdout.String()
	if !strings.HasPrefix(output, "digraph includes {\n") {
		t.Fatalf("expected stdout to be a DOT graph only, got:\n%s", output)
	}
	if !strings.HasSuffix(output, "}\n") {
		t.Fatalf("expected stdout to end with the graph, got:\n%s", output)
	}
	if strings.Contains(output, "not found") {
		t.Fatalf("expected diagnostics to stay out of the graph, got:\n%s", output)
	}
	if !strings.Contains(output, `"../hook.cpp" -> "art/runtime/runtime.h";`) {
		t.Fatalf("expected edge from source file, got:\n%s", output)
	}
	if !strings.Contains(output, `"art/runtime/runtime.h" -> "art/runtime/base/macros.h";`) {
		t.Fatalf("expected header edge, got:\n%s", output)
	}
	if got, want := stderr.String(), "stddef.h not found\njni.h not found\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

func TestExtractCommand_PrintsMermaidGraphOnly(t *testing.T) {
	tree, out, source := setupTree(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, source, "-o", out, "-s", "art/runtime", "-g", "mermaid", "-q"})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	if !strings.HasPrefix(stdout.String(), "---\ntitle: hook.cpp\n---\nflowchart LR\n") {
		t.Fatalf("expected stdout to be a Mermaid flowchart only, got:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "jni.h not found") {
		t.Fatalf("expected diagnostics on stderr, got %q", stderr.String())
	}
}

func TestExtractCommand_MissingInputIsFatal(t *testing.T) {
	tree, out, _ := setupTree(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, filepath.Join(out, "missing.cpp"), "-o", out, "-s", "art/runtime"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	var openErr *headers.FatalOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("cmd.Execute() error = %v, want FatalOpenError", err)
	}
	entries, readErr := os.ReadDir(out)
	if readErr != nil {
		t.Fatalf("os.ReadDir() error = %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no copies, found %d entries", len(entries))
	}
}

func TestExtractCommand_UsesConfigFileInOutputDir(t *testing.T) {
	tree, out, source := setupTree(t)
	writeFile(t, filepath.Join(out, config.FileName), "search_dirs:\n  - art/runtime/base\n")

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, source, "-o", out, "-q"})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "runtime.h not found") {
		t.Fatalf("expected runtime.h to be outside the configured search dirs, got %q", stdout.String())
	}
}

func TestExtractCommand_RejectsUnknownGraphFormat(t *testing.T) {
	tree, out, source := setupTree(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{tree, source, "-o", out, "-g", "svg"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown graph format") {
		t.Fatalf("cmd.Execute() error = %v, want unknown graph format", err)
	}
}

func TestExtractCommand_RequiresTwoArgs(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"only-one"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing file argument")
	}
}

func TestRun_RejectsMissingSourceTree(t *testing.T) {
	_, err := Run(&bytes.Buffer{}, &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope"), "main.c", &Options{OutDir: t.TempDir()})

	if err == nil || !strings.Contains(err.Error(), "source tree root") {
		t.Fatalf("Run() error = %v, want source tree root error", err)
	}
}
