// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/citeverify/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

// fakeConverter implements Converter for testing.
type fakeConverter struct {
	output string
	err    error
}

func (f *fakeConverter) Name() string { return "fake" }

func (f *fakeConverter) Convert(context.Context, []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		backend types.ConversionBackend
		want    string
		wantErr bool
	}{
		{"", "native", false},
		{types.BackendNative, "native", false},
		{"grobid", "", true},
	}
	for _, tt := range tests {
		c, err := New(types.ConversionConfig{Backend: tt.backend})
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			continue
		}
		if err == nil && c.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.backend, c.Name(), tt.want)
		}
	}
}

func TestPdftotextMissingBinary(t *testing.T) {
	_, err := newPdftotext(&mockExecutor{})
	if err == nil {
		t.Fatal("expected error when pdftotext is not on PATH")
	}
	if !strings.Contains(err.Error(), "pdftotext not found") {
		t.Errorf("error = %q", err)
	}
}

func TestPdftotextConvert(t *testing.T) {
	var gotArgs []string
	var gotInput string
	m := &mockExecutor{
		availableBins: map[string]bool{binPdftotext: true},
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			gotArgs = args
			b, _ := io.ReadAll(stdin)
			gotInput = string(b)
			_, err := io.WriteString(stdout, "Title\n\nReferences\n[1] A. Author. Paper. 2020.\n")
			return err
		},
	}
	c, err := newPdftotext(m)
	if err != nil {
		t.Fatal(err)
	}

	text, err := c.Convert(context.Background(), []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if gotInput != "%PDF-1.4 fake" {
		t.Errorf("stdin = %q", gotInput)
	}
	if gotArgs[0] != "-layout" || gotArgs[len(gotArgs)-1] != "-" {
		t.Errorf("args = %v", gotArgs)
	}
	if !strings.Contains(text, "[1] A. Author") {
		t.Errorf("text = %q", text)
	}
}

func TestPdftotextErrors(t *testing.T) {
	failing := &mockExecutor{
		availableBins: map[string]bool{binPdftotext: true},
		runPipedFunc: func(string, []string, io.Reader, io.Writer) error {
			return errors.New("exit status 1: Syntax Error")
		},
	}
	c, _ := newPdftotext(failing)
	if _, err := c.Convert(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "running pdftotext") {
		t.Errorf("err = %v, want wrapped run failure", err)
	}

	empty := &mockExecutor{availableBins: map[string]bool{binPdftotext: true}}
	c, _ = newPdftotext(empty)
	if _, err := c.Convert(context.Background(), nil); !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

func TestNativeRejectsNonPDF(t *testing.T) {
	_, err := NewNative().Convert(context.Background(), []byte("this is not a pdf"))
	if err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestConvertFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("fake pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := ConvertFile(context.Background(), &fakeConverter{output: "hello"}, path)
	if err != nil || text != "hello" {
		t.Errorf("ConvertFile = %q, %v", text, err)
	}

	_, err = ConvertFile(context.Background(), &fakeConverter{err: ErrNoText}, path)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
	if err != nil && !strings.Contains(err.Error(), "paper.pdf with fake") {
		t.Errorf("err = %q should name the file and backend", err)
	}

	if _, err := ConvertFile(context.Background(), &fakeConverter{}, filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
