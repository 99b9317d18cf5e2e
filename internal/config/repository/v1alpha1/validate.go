package v1alpha1

import (
	"bytes"
	"fmt"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONSchema is the schema of a repository configuration entry.
//
//go:embed resources/schema.json
var JSONSchema []byte

const schemaFile = "resources/schema.json"

var getJSONSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(JSONSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if err := c.AddResource(schemaFile, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	sch, err := c.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
})

// ValidateRawJSON validates a JSON encoded repository configuration entry against [JSONSchema].
func ValidateRawJSON(raw []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration entry: %w", err)
	}
	sch, err := getJSONSchema()
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}
	return sch.Validate(instance)
}
