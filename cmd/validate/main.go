// SPDX-License-Identifier: MIT

// validate is a CLI tool to validate aictconf YAML files.
//
// Usage:
//
//	validate config.yaml [more.yaml ...]
//	validate -ci ci.yaml
//
// Exit codes:
//   - 0: All files are valid
//   - 1: At least one file is invalid (parse or validation error)
//   - 2: Usage error (no files given)
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aict-tools/aictconf/internal/ci"
	"github.com/aict-tools/aictconf/internal/config"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	ciManifest := fs.Bool("ci", false, "validate CI manifests instead of analysis configs")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, Version)
		return 0
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: at least one file is required")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  validate config.yaml [more.yaml ...]")
		fmt.Fprintln(stderr, "  validate -ci ci.yaml")
		return 2
	}

	errs := make([]error, len(files))
	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			errs[i] = validateFile(file, *ciManifest)
			return nil
		})
	}
	_ = g.Wait()

	exit := 0
	for i, file := range files {
		if errs[i] != nil {
			fmt.Fprintf(stderr, "Configuration error in %s:\n", file)
			fmt.Fprintf(stderr, "  %v\n", errs[i])
			exit = 1
			continue
		}
		fmt.Fprintf(stdout, "✓ %s is valid\n", file)
	}
	return exit
}

func validateFile(path string, ciManifest bool) error {
	if ciManifest {
		manifest, err := ci.Load(path)
		if err != nil {
			return err
		}
		return manifest.Validate()
	}

	// Load performs strict parsing and full validation.
	loader := config.NewLoader(path, Version)
	_, err := loader.Load()
	return err
}
