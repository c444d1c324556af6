package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pior/cps/request"
)

// parseObject decodes a JSON object. Numbers keep their textual form so
// integers are not rendered as floats.
func parseObject(s string) (request.Object, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj request.Object
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return obj, nil
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "{")
}

// parseQuery returns a structured query for JSON input, the text otherwise.
func parseQuery(s string) (any, error) {
	if isJSONObject(s) {
		return parseObject(s)
	}
	return s, nil
}

// parseDocuments turns each argument into a document: JSON objects become
// structured documents, anything else is raw XML.
func parseDocuments(args []string) ([]request.Document, error) {
	docs := make([]request.Document, 0, len(args))
	for _, arg := range args {
		if !isJSONObject(arg) {
			docs = append(docs, request.RawDocument(arg))
			continue
		}
		fields, err := parseObject(arg)
		if err != nil {
			return nil, err
		}
		docs = append(docs, request.ObjectDocument(fields))
	}
	return docs, nil
}
