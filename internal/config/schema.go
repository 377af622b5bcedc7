// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed header_config.schema.json
var headerConfigSchema []byte

// headerSchemaURL identifies the embedded schema in validation errors
const headerSchemaURL = "mem://pdfnorm/header_config.schema.json"

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func headerSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(headerSchemaURL, bytes.NewReader(headerConfigSchema)); err != nil {
			compiledSchemaErr = fmt.Errorf("failed to load header config schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(headerSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateHeaderConfigSchema checks raw YAML against the header config
// schema. An empty document is valid.
func ValidateHeaderConfigSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("error parsing header config: %w", err)
	}
	if doc == nil {
		return nil
	}

	// The validator expects JSON-shaped values, so round-trip through JSON.
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("header config keys must be strings: %w", err)
	}
	var jsonDoc any
	if err := json.Unmarshal(encoded, &jsonDoc); err != nil {
		return fmt.Errorf("failed to decode header config for validation: %w", err)
	}

	schema, err := headerSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("header config does not match schema: %w", err)
	}
	return nil
}
