package asm

import (
	"fmt"

	"minicpp/pkg/compiler"
	"minicpp/pkg/vm"
)

// Compile runs the whole pipeline: parse, generate the listing and assemble
// it. The listing is returned even when assembly fails.
func Compile(src string) (string, *vm.Program, error) {
	root, err := compiler.Parse(src)
	if err != nil {
		return "", nil, err
	}

	listing, err := compiler.Generate(root)
	if err != nil {
		return "", nil, fmt.Errorf("codegen error: %w", err)
	}

	prog, err := Assemble(listing)
	if err != nil {
		return listing, nil, fmt.Errorf("assembly error: %w", err)
	}
	return listing, prog, nil
}
