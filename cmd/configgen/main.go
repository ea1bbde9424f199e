// SPDX-License-Identifier: MIT

// configgen writes analysis configuration files in normalized form.
//
// Without -in it writes the built-in default configuration, serving as a
// starting point for a new analysis. With -in it loads, validates and
// rewrites an existing configuration (legacy constructor strings come out as
// structured model specs, legacy cut mappings come out as the list form).
//
// Usage:
//
//	configgen -out config.example.yaml
//	configgen -in old.yaml -out normalized.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aict-tools/aictconf/internal/config"
)

var Version = "dev"

func main() {
	inPath := flag.String("in", "", "existing configuration to normalize (optional)")
	outPath := flag.String("out", "config.example.yaml", "output path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	cfg := config.Default()
	cfg.Version = Version

	if *inPath != "" {
		loader := config.NewLoader(*inPath, Version)
		loaded, err := loader.Load()
		if err != nil {
			fail(fmt.Errorf("load %s: %w", *inPath, err))
		}
		cfg = loaded
	}

	manager := config.NewManager(*outPath)
	if err := manager.Save(&cfg); err != nil {
		fail(fmt.Errorf("write %s: %w", *outPath, err))
	}

	fmt.Printf("wrote %s\n", *outPath)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
	os.Exit(1)
}
