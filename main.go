//go:build !js

package main

import (
	"fmt"
	"os"

	"minicpp/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
