package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formbind/pkg/config"
)

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] [-fix] [-yes] [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nReport formbind directives written with the host prefix.\n"); err != nil {
			panic(err)
		}
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "formbind config file (JSON or YAML)")
	fix := flag.Bool("fix", false, "rewrite mistaken attributes")
	yes := flag.Bool("yes", false, "rewrite without asking")
	flag.Parse()

	cfg := config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{cfg.Templates}
		if cfg.Templates == "" {
			paths = []string{"."}
		}
	}

	files, err := collectTemplates(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "collect templates: %v\n", err)
		os.Exit(2)
	}

	checker, err := newLinter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configure: %v\n", err)
		os.Exit(2)
	}

	var confirm confirmer = surveyConfirmer{}
	if *yes {
		confirm = alwaysConfirm{}
	}

	ctx := context.Background()
	remaining := 0
	for _, path := range files {
		diags, err := checker.lint(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(2)
		}
		if len(diags) == 0 {
			continue
		}
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		if !*fix {
			remaining += len(diags)
			continue
		}
		fixed, err := checker.fix(ctx, path, diags, confirm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fix %s: %v\n", path, err)
			os.Exit(2)
		}
		if !fixed {
			remaining += len(diags)
		}
	}

	if remaining > 0 {
		os.Exit(1)
	}
}
