package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind"
)

// input is the render request read from the -data file.
type input struct {
	Form         map[string]any      `json:"form" yaml:"form"`
	Data         map[string]any      `json:"data" yaml:"data"`
	Errors       map[string][]string `json:"errors" yaml:"errors"`
	Action       string              `json:"action" yaml:"action"`
	Locale       string              `json:"locale" yaml:"locale"`
	Hidden       map[string]string   `json:"hidden" yaml:"hidden"`
	AssetVersion string              `json:"assetVersion" yaml:"assetVersion"`
}

func decodeInput(raw []byte, source string) (input, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return input{}, nil
	}

	var in input
	if err := json.Unmarshal(raw, &in); err == nil {
		return in, nil
	}
	in = input{}
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return input{}, fmt.Errorf("parse %s: invalid JSON or YAML: %w", source, err)
	}
	return in, nil
}

func (in input) renderOptions() formbind.RenderOptions {
	opts := formbind.RenderOptions{
		Data:         in.Data,
		ErrorPayload: in.Errors,
		Action:       in.Action,
		Locale:       in.Locale,
		HiddenFields: in.Hidden,
		AssetVersion: in.AssetVersion,
	}
	if in.Form != nil {
		opts.Form = in.Form
	}
	return opts
}
