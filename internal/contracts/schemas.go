package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	PriceLookupEventType    = "PriceLookupEvent"
	PriceLookupEventVersion = "1.0.0"
)

const schemaBaseURL = "https://schemas.bds-price-service.local/"

//go:embed events
var schemaFiles embed.FS

// файл схемы для каждого типа события
var schemaPaths = map[string]string{
	PriceLookupEventType + "/" + PriceLookupEventVersion: "events/price-lookup/v1.json",
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

// load компилирует все схемы один раз, при первом обращении
func load() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true

		schemas := make(map[string]*jsonschema.Schema, len(schemaPaths))
		for key, path := range schemaPaths {
			raw, err := schemaFiles.ReadFile(path)
			if err != nil {
				compileErr = fmt.Errorf("failed to read schema %s: %w", path, err)
				return
			}
			url := schemaBaseURL + path
			if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
				compileErr = fmt.Errorf("failed to add schema %s: %w", path, err)
				return
			}
			schema, err := compiler.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("failed to compile schema %s: %w", path, err)
				return
			}
			schemas[key] = schema
		}
		compiledSchemas = schemas
	})
	return compiledSchemas, compileErr
}

// MustLoad падает при старте, если встроенные схемы не компилируются
func MustLoad() {
	if _, err := load(); err != nil {
		panic(err)
	}
}

// ValidateEvent проверяет тело сообщения по схеме события
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	schemas, err := load()
	if err != nil {
		return err
	}

	key := eventType + "/" + eventVersion
	schema, ok := schemas[key]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
