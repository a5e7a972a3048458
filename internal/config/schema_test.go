package config

import (
	"strings"
	"testing"
)

func TestValidateSchemaAcceptsFullDocument(t *testing.T) {
	doc := `
run:
  id: attempt1
  expname: swe-bench-32b-attempt1
  output_dir: /results/swe-bench/32b/attempt1
model:
  size: 32b
  path: /checkpoints/qwen-32b
cluster:
  name: oci-iad
  server_type: vllm
  server_nodes: 1
  server_gpus: 8
  server_args: "--tensor-parallel-size 8"
  server_container: igitman/nemo-skills-vllm:0.6.1
benchmark:
  name: swe-bench
  split: test
  num_chunks: 8
  dependent_jobs: 0
agent:
  framework: swe_agent
  repo: https://github.com/SWE-agent/SWE-agent
  commit: 1a2b3c4
inference:
  temperature: 0.6
  top_p: 0.95
  top_k: 20
`
	if err := ValidateSchema([]byte(doc)); err != nil {
		t.Fatalf("ValidateSchema returned error: %v", err)
	}
}

func TestValidateSchemaAcceptsEmptyDocument(t *testing.T) {
	if err := ValidateSchema(nil); err != nil {
		t.Fatalf("ValidateSchema returned error for empty doc: %v", err)
	}
}

func TestValidateSchemaRejectsWrongTypes(t *testing.T) {
	doc := `
benchmark:
  num_chunks: eight
`
	err := ValidateSchema([]byte(doc))
	if err == nil {
		t.Fatal("ValidateSchema expected to reject string chunk count")
	}
	if !strings.Contains(err.Error(), "num_chunks") {
		t.Fatalf("expected num_chunks in error, got: %v", err)
	}
}

func TestValidateSchemaRejectsUnknownSections(t *testing.T) {
	doc := `
modle:
  path: /checkpoints/typo
`
	if err := ValidateSchema([]byte(doc)); err == nil {
		t.Fatal("ValidateSchema expected to reject misspelled section")
	}
}
