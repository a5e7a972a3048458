package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// launchConfigSchema catches structural mistakes (wrong types, misspelled
// sections) before the document is decoded into LaunchConfig. Value ranges
// and required fields are checked by ValidateConfig.
const launchConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "run": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "expname": {"type": "string"},
        "output_dir": {"type": "string"}
      }
    },
    "model": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "size": {"type": "string"},
        "path": {"type": "string"}
      }
    },
    "cluster": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"},
        "server_type": {"type": "string"},
        "server_nodes": {"type": "integer"},
        "server_gpus": {"type": "integer"},
        "server_args": {"type": "string"},
        "server_container": {"type": "string"}
      }
    },
    "benchmark": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"},
        "split": {"type": "string"},
        "num_chunks": {"type": "integer"},
        "dependent_jobs": {"type": "integer"}
      }
    },
    "agent": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "framework": {"type": "string"},
        "repo": {"type": "string"},
        "commit": {"type": "string"}
      }
    },
    "inference": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "temperature": {"type": "number"},
        "top_p": {"type": "number"},
        "top_k": {"type": "integer"}
      }
    }
  }
}`

// ValidateSchema validates a raw YAML config document against the launch
// config schema.
func ValidateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config document: %w", err)
	}
	if doc == nil {
		return nil
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config document: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(launchConfigSchema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		issues = append(issues, issue.String())
	}
	return fmt.Errorf("config failed schema validation: %s", strings.Join(issues, "; "))
}
