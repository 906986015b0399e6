// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads and saves the per project settings file
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/kballard/go-shellquote"
	"github.com/santhosh-tekuri/jsonschema/v6"

	iu "github.com/appdev-cli/appdev/internal/util"
	"github.com/appdev-cli/appdev/model"
)

//go:embed schema.json
var schemaJSON []byte

// FileName is the project local settings file looked for first
const FileName = ".appdev.yaml"

// SavedDestination is a remembered device or simulator choice
type SavedDestination struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Project is the saved configuration for one project directory
type Project struct {
	Workspace     string            `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Project       string            `yaml:"project,omitempty" json:"project,omitempty"`
	Scheme        string            `yaml:"scheme,omitempty" json:"scheme,omitempty"`
	Configuration string            `yaml:"configuration,omitempty" json:"configuration,omitempty"`
	Platform      string            `yaml:"platform,omitempty" json:"platform,omitempty"`
	Device        *SavedDestination `yaml:"device,omitempty" json:"device,omitempty"`
	Simulator     *SavedDestination `yaml:"simulator,omitempty" json:"simulator,omitempty"`
	Family        string            `yaml:"family,omitempty" json:"family,omitempty"`
	Filter        string            `yaml:"simulator_filter,omitempty" json:"simulator_filter,omitempty"`
	ExtraArgs     string            `yaml:"extra_args,omitempty" json:"extra_args,omitempty"`
}

// Request maps the saved platform to a resolution request, simulator when
// nothing is saved
func (p *Project) Request() model.PlatformRequest {
	switch p.Platform {
	case "device":
		return model.RequestDevice
	case "mac":
		return model.RequestMac
	default:
		return model.RequestSimulator
	}
}

// SplitExtraArgs splits the extra arguments string using shell quoting rules
func (p *Project) SplitExtraArgs() ([]string, error) {
	if p.ExtraArgs == "" {
		return nil, nil
	}

	args, err := shellquote.Split(p.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid extra_args: %w", model.ErrInvalidConfig, err)
	}

	return args, nil
}

// ProjectSelector returns the build tool arguments naming the workspace or
// project, nothing when neither is configured
func (p *Project) ProjectSelector() []string {
	switch {
	case p.Workspace != "":
		return []string{"-workspace", p.Workspace}
	case p.Project != "":
		return []string{"-project", p.Project}
	default:
		return nil
	}
}

// Path returns the settings file for a project directory: the project
// local file when present, else the per user file under the XDG config home
func Path(dir string) string {
	local := filepath.Join(dir, FileName)
	if iu.FileExists(local) {
		return local
	}

	return filepath.Join(xdg.ConfigHome, "appdev", "config.yaml")
}

// Load reads and validates the settings for dir, a missing file yields an
// empty configuration
func Load(dir string) (*Project, error) {
	path := Path(dir)
	if !iu.FileExists(path) {
		return &Project{}, nil
	}

	yb, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(yb)
}

// Parse validates raw YAML against the embedded schema and unmarshals it
func Parse(yb []byte) (*Project, error) {
	err := validate(yb)
	if err != nil {
		return nil, err
	}

	cfg := &Project{}
	err = yaml.Unmarshal(yb, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Save writes the settings to the project local file in dir
func Save(dir string, cfg *Project) error {
	yb, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, FileName), yb, 0644)
}

func validate(yb []byte) error {
	jb, err := yaml.YAMLToJSON(yb)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidConfig, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(jb))
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidConfig, err)
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	err = compiler.AddResource("config.json", schemaDoc)
	if err != nil {
		return err
	}

	schema, err := compiler.Compile("config.json")
	if err != nil {
		return err
	}

	err = schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidConfig, err)
	}

	return nil
}
