// SPDX-License-Identifier: MIT

// cimatrix expands the build matrix of a CI manifest into concrete jobs and
// optionally evaluates the deploy stanza for a given build context.
//
// Usage:
//
//	cimatrix -f ci.yaml
//	cimatrix -f ci.yaml -branch master -tag v0.5.0
//
// Output is JSON on stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aict-tools/aictconf/internal/ci"
)

var Version = "dev"

type output struct {
	Jobs   []ci.Job       `json:"jobs"`
	Deploy []deployResult `json:"deploy,omitempty"`
}

type deployResult struct {
	Version     string `json:"version"`
	WouldDeploy bool   `json:"would_deploy"`
}

func main() {
	file := flag.String("f", "", "path to CI manifest")
	branch := flag.String("branch", "", "branch of the evaluated build")
	tag := flag.String("tag", "", "tag of the evaluated build (empty: not a tag build)")
	showVersion := flag.Bool("version", false, "print version and exit")

	extraEnv := map[string]string{}
	flag.Func("env", "additional NAME=value for condition evaluation (repeatable)", func(s string) error {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return fmt.Errorf("malformed assignment %q", s)
		}
		extraEnv[name] = value
		return nil
	})

	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		os.Exit(2)
	}

	manifest, err := ci.Load(*file)
	if err != nil {
		fail(err)
	}
	if err := manifest.Validate(); err != nil {
		fail(err)
	}

	jobs, err := manifest.Jobs()
	if err != nil {
		fail(err)
	}

	out := output{Jobs: jobs}

	if manifest.Deploy != nil && (*branch != "" || *tag != "") {
		for _, job := range jobs {
			env := make(map[string]string, len(job.Env)+len(extraEnv))
			for k, v := range job.Env {
				env[k] = v
			}
			for k, v := range extraEnv {
				env[k] = v
			}
			would, err := manifest.Deploy.ShouldDeploy(ci.Context{
				Branch: *branch,
				Tag:    *tag,
				Python: job.Version,
				Env:    env,
			})
			if err != nil {
				fail(err)
			}
			out.Deploy = append(out.Deploy, deployResult{Version: job.Version, WouldDeploy: would})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "cimatrix: %v\n", err)
	os.Exit(1)
}
