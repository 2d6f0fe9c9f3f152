// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Azure/armlint/bicep"
)

// cliCompiler compiles Bicep files by shelling out to the bicep CLI.
type cliCompiler struct {
	path string
}

var _ bicep.Compiler = (*cliCompiler)(nil)

// newCLICompiler returns a compiler using the bicep binary at path, or the
// one found on the PATH when path is empty.
func newCLICompiler(path string) (*cliCompiler, error) {
	if path == "" {
		found, err := exec.LookPath("bicep")
		if err != nil {
			return nil, errors.New("bicep input requires the bicep CLI: install it or pass --bicep-cli")
		}
		path = found
	}
	return &cliCompiler{path: path}, nil
}

// Compile implements bicep.Compiler. The CLI build emits no source map, so
// findings on compiled templates carry the JSON line numbers.
func (c *cliCompiler) Compile(ctx context.Context, file string) (*bicep.CompiledTemplate, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, "build", "--stdout", file)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("bicep build %s: %w: %s", file, err, strings.TrimSpace(stderr.String()))
	}
	return &bicep.CompiledTemplate{TemplateJSON: stdout.Bytes()}, nil
}
