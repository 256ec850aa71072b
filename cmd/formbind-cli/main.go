package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/config"
)

const cliSession = "formbind-cli"

func main() {
	configPath := flag.String("config", "", "formbind config file (JSON or YAML)")
	templates := flag.String("templates", "", "template directory (overrides the config)")
	name := flag.String("template", "", "template to render, relative to the template directory")
	dataPath := flag.String("data", "", "render input file (JSON or YAML)")
	output := flag.String("output", "", "output file (stdout if empty)")
	verbose := flag.Bool("v", false, "log matched directives")
	flag.Parse()

	if *name == "" {
		log.Fatalf("missing -template")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *templates != "" {
		cfg.Templates = *templates
	}

	in := input{}
	if *dataPath != "" {
		raw, err := os.ReadFile(*dataPath)
		if err != nil {
			log.Fatalf("Failed to read data: %v", err)
		}
		in, err = decodeInput(raw, *dataPath)
		if err != nil {
			log.Fatalf("Failed to decode data: %v", err)
		}
	}

	engine, err := formbind.New(formbind.WithConfig(cfg), formbind.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to configure engine: %v", err)
	}
	if in.Action != "" {
		engine.Tokens().Save(cliSession, in.Action)
	}

	outputHTML, err := engine.RenderForm(context.Background(), cliSession, *name, in.renderOptions())
	if err != nil {
		if len(outputHTML) > 0 {
			fmt.Println(string(outputHTML))
		}
		log.Fatalf("Failed to render template: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, outputHTML, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Template written to %s\n", *output)
	} else {
		fmt.Println(string(outputHTML))
	}
}
