// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

var defaultExec executor = osExecutor{}

// PdftotextConverter pipes the PDF through `pdftotext -layout - -`. The
// layout mode keeps reference entries on their own lines.
type PdftotextConverter struct {
	exec executor
}

// NewPdftotext returns a converter using the pdftotext binary on PATH.
func NewPdftotext() (*PdftotextConverter, error) {
	return newPdftotext(defaultExec)
}

func newPdftotext(exec executor) (*PdftotextConverter, error) {
	if _, err := exec.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	return &PdftotextConverter{exec: exec}, nil
}

// Name implements Converter.
func (*PdftotextConverter) Name() string { return binPdftotext }

// Convert implements Converter.
func (p *PdftotextConverter) Convert(ctx context.Context, data []byte) (string, error) {
	var out bytes.Buffer
	args := []string{"-layout", "-enc", "UTF-8", "-", "-"}
	if err := p.exec.RunPiped(ctx, binPdftotext, args, bytes.NewReader(data), &out); err != nil {
		return "", fmt.Errorf("running %s: %w", binPdftotext, err)
	}
	return checkText(out.String())
}
