// Package schema shape-checks inbound JSON payloads before they reach
// the intake pipeline. Compiled schemas are cached; webhook adapters can
// register their own payload schemas alongside the built-in submission one.
package schema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// submissionSchema describes the raw 5W+1H submission body. Length and
// content rules live in the validator; this only rejects payloads of the
// wrong shape before they are decoded.
const submissionSchema = `{
	"type": "object",
	"properties": {
		"what":  {"type": "string"},
		"where": {"type": "string"},
		"when":  {"type": "string"},
		"who":   {"type": "string"},
		"how":   {"type": "string"},
		"evidenceDescription": {"type": "string"},
		"contactInfo":         {"type": "string"},
		"sourceChannel": {
			"type": "string",
			"enum": ["web", "whatsapp", "chatbot", "email"]
		}
	},
	"required": ["what", "where", "when", "who", "how"],
	"additionalProperties": false
}`

type Compiler struct {
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
}

// NewCompilerWithCache creates a new compiler with cache
func NewCompilerWithCache(maxSize int) *Compiler {
	c := js.NewCompiler()
	c.ExtractAnnotations = true

	return &Compiler{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
	}
}

// ValidateSubmission checks a raw JSON body against the submission schema.
func (c *Compiler) ValidateSubmission(ctx context.Context, body []byte) error {
	return c.ValidateRaw(ctx, submissionSchema, body)
}

// ValidateRaw validates a JSON document against a schema given as JSON text.
func (c *Compiler) ValidateRaw(ctx context.Context, schemaJSON string, body []byte) error {
	compiled, err := c.prepare(schemaJSON)
	if err != nil {
		return err
	}

	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// prepare compiles and caches a schema keyed by its JSON text.
func (c *Compiler) prepare(schemaJSON string) (*js.Schema, error) {
	if compiled, ok := c.cache.Get(schemaJSON); ok {
		return compiled, nil
	}

	// Use a hash-based URL to avoid URL parsing issues with JSON content
	hash := sha256.Sum256([]byte(schemaJSON))
	resourceURL := fmt.Sprintf("mem://schema/%x.json", hash[:8])
	if err := c.compiler.AddResource(resourceURL, bytes.NewReader([]byte(schemaJSON))); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := c.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	c.cache.Add(schemaJSON, compiled)
	return compiled, nil
}
