package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"markspan/internal/diag"
	"markspan/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")

	content := []byte("package p\n\nvar bad int = expect.Output(`x`)\n")
	fileID := fs.Add("/home/user/project/src/test.go", content, 0)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(
		diag.MarkUnhandledShape,
		source.Span{File: fileID, Start: 11, End: 44},
		"marker has a type annotation",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{
			name:     "Absolute path",
			mode:     PathModeAbsolute,
			contains: "/home/user/project/src/test.go:3:1",
		},
		{
			name:     "Relative path",
			mode:     PathModeRelative,
			contains: "\nsrc/test.go:3:1",
		},
		{
			name:     "Basename only",
			mode:     PathModeBasename,
			contains: "\ntest.go:3:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := "\n" + buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR MRK3003") {
				t.Error("Expected severity and code in output")
			}
			if !strings.Contains(output, "type annotation") {
				t.Error("Expected error message in output")
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.go", []byte("package a\n\nvar bad = 1\n"))

	bag := diag.NewBag(0)
	bag.Add(diag.NewWarning(diag.MarkNestedIgnored, source.Span{File: fileID, Start: 11, End: 22}, "ignored"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})

	want := "a.go:3:1: WARNING MRK3004: ignored\n" +
		" 3 | var bad = 1\n" +
		"   | ^^^^^^^^^^^\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	src := "package a\n\nfunc f() {}\nvar _ = expect.Part(\"p\")\n"
	fileID := fs.AddVirtual("a.go", []byte(src))

	label := strings.Index(src, "var _")
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.MarkMisplacedPart,
		source.Span{File: fileID, Start: uint32(label), End: uint32(label + 5)}, "late"). //nolint:gosec
		WithNote(source.Span{File: fileID, Start: 11, End: 22}, "code accumulated from here"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		" 3 | func f() {}\n",
		" 4 | var _ = expect.Part(\"p\")\n",
		"   | ^^^^^\n",
		"  note: a.go:3:1: code accumulated from here\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Errorf("notes printed with ShowNotes=false:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.go", []byte("package a\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SynParseError, source.At(fileID, 0), "boom"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{Color: false})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", colored.String())
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	src := "package a\n\nvar s = \"日本\"; var bad = 1\n"
	fileID := fs.AddVirtual("w.go", []byte(src))
	start := strings.Index(src, "var bad")

	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.MarkUnhandledShape,
		source.Span{File: fileID, Start: uint32(start), End: uint32(start + 3)}, "wide")) //nolint:gosec

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})

	// "var s = "日本"; " занимает 16 колонок: каждый иероглиф по две
	want := "   | " + strings.Repeat(" ", 16) + "^^^\n"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("caret misplaced:\n%s", buf.String())
	}
}
