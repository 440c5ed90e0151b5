// Package checkers provides quicktest checkers shared by the test suites.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

type jsonPathChecker struct {
	path string
}

// JSONPathEquals returns a checker that decodes the got JSON document
// (string or []byte), evaluates path against it and compares the selected
// value with want using qt.DeepEquals. JSON numbers decode as float64.
//
//	c.Assert(body, checkers.JSONPathEquals("$.total"), float64(1))
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path}
}

func (c *jsonPathChecker) ArgNames() []string {
	return []string{"got", "want"}
}

func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var data []byte
	switch v := got.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return qt.BadCheckf("expected string or []byte, got %T", got)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("cannot decode JSON: %w", err)
	}
	selected, err := jsonpath.Read(doc, c.path)
	if err != nil {
		note("path", c.path)
		return fmt.Errorf("cannot evaluate JSONPath: %w", err)
	}
	note("path", c.path)
	note("selected", selected)
	return qt.DeepEquals.Check(selected, args, note)
}
