// Package validate checks request bodies against the JSON Schemas embedded
// under schemas/. Handlers decode a body only after it passed its schema, so
// shape errors (missing fields, wrong types, bad email, unknown status) are
// all reported the same way.
package validate

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names, one per request body.
const (
	Register   = "register"
	Login      = "login"
	TodoCreate = "todo_create"
	TodoUpdate = "todo_update"
	UserUpdate = "user_update"
)

const baseURL = "https://schemas.todo-api.local/"

//go:embed schemas/*.json
var schemaFS embed.FS

var compiled = mustCompileAll()

// Error describes the first schema violation found in a body.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Body validates raw JSON against the named schema. It returns *Error for
// malformed JSON or a schema violation.
func Body(name string, raw []byte) error {
	sch, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &Error{Message: "malformed JSON: " + err.Error()}
	}
	if dec.More() {
		return &Error{Message: "malformed JSON: trailing data"}
	}
	if err := sch.Validate(doc); err != nil {
		return toError(err)
	}
	return nil
}

func mustCompileAll() map[string]*jsonschema.Schema {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("read embedded schemas: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", e.Name(), err))
		}
		if err := compiler.AddResource(baseURL+e.Name(), bytes.NewReader(data)); err != nil {
			panic(fmt.Sprintf("add schema %s: %v", e.Name(), err))
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}

	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		out[name] = compiler.MustCompile(baseURL + name + ".json")
	}
	return out
}

// toError reduces a jsonschema.ValidationError tree to its first leaf.
func toError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &Error{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &Error{Path: strings.TrimPrefix(ve.InstanceLocation, "/"), Message: ve.Message}
}
