package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrInvalidDocument is returned when a document does not match its schema.
var ErrInvalidDocument = errors.New("export document failed schema validation")

const schemaBase = "https://github.com/panbanda/devflow/schemas/"

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemasErr = err
			return
		}
		c := jsonschema.NewCompiler()
		for _, e := range entries {
			raw, err := schemaFS.ReadFile("schemas/" + e.Name())
			if err != nil {
				schemasErr = err
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				schemasErr = fmt.Errorf("parse schema %s: %w", e.Name(), err)
				return
			}
			if err := c.AddResource(schemaBase+e.Name(), doc); err != nil {
				schemasErr = fmt.Errorf("add schema %s: %w", e.Name(), err)
				return
			}
		}
		compiled := make(map[string]*jsonschema.Schema, len(entries))
		for _, e := range entries {
			sch, err := c.Compile(schemaBase + e.Name())
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
				return
			}
			compiled[e.Name()] = sch
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// Validate checks an encoded document against the schema for name.
func Validate(name string, data []byte) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	sch, ok := all[name]
	if !ok {
		return fmt.Errorf("no schema for %s", name)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	return nil
}

// Encode marshals v as indented JSON and validates it as document name.
func Encode(name string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := Validate(name, data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
