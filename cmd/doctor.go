// Copyright (c) 2026, the appdev project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
)

type doctorCommand struct {
	yamlFormat bool
	query      string
}

func registerDoctorCommand(app *fisk.Application) {
	cmd := &doctorCommand{}

	doctor := app.Command("doctor", "Report on the machine and the build toolchain").Action(cmd.doctorAction)
	doctor.Arg("query", "Query to execute").StringVar(&cmd.query)
	doctor.Flag("yaml", "Output the report in YAML format").UnNegatableBoolVar(&cmd.yamlFormat)
}

func (c *doctorCommand) doctorAction(_ *fisk.ParseContext) error {
	mgr, _, cleanup, err := newManager()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := mgr.Facts(ctx)
	if err != nil {
		return err
	}

	jb, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if c.query != "" {
		res := gjson.GetBytes(jb, c.query)
		jb = []byte(res.Raw)
	}

	if c.yamlFormat {
		y, err := yaml.JSONToYAML(jb)
		if err != nil {
			return err
		}

		fmt.Println(string(y))
		return nil
	}

	j := bytes.NewBuffer([]byte{})
	err = json.Indent(j, jb, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(j.String())

	return nil
}
