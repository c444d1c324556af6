package request

import (
	"maps"
	"slices"
)

// Request is a command plus its parameters, ready for the writer.
//
// A Request is built once per operation by one of the constructor functions
// in this package, optionally refined with the Set* methods, then handed to
// WriteRequest. Requests are not safe for concurrent mutation.
type Request struct {
	// Command is the root element of the wire document.
	Command Command

	// Params holds the well-known and ad-hoc parameters in the order they
	// were set.
	Params Params

	// DocumentIDs are written as repeated <id> elements after the
	// parameters. Used by retrieve, lookup, delete and show-history.
	DocumentIDs []string

	// Documents are written as repeated <document> elements after the
	// identifiers. Used by the modify family.
	Documents []Document
}

// Document is a document payload: either raw XML written verbatim inside
// the <document> element, or an Object rendered as nested elements.
type Document struct {
	XML    string
	Fields Object
}

// RawDocument wraps a pre-serialized XML document body.
func RawDocument(xml string) Document {
	return Document{XML: xml}
}

// ObjectDocument wraps a shallow copy of a structured document.
func ObjectDocument(fields Object) Document {
	return Document{Fields: maps.Clone(fields)}
}

// RawDocuments wraps each XML string with RawDocument.
func RawDocuments(xml ...string) []Document {
	docs := make([]Document, len(xml))
	for i, x := range xml {
		docs[i] = RawDocument(x)
	}
	return docs
}

// New creates an empty request for cmd.
func New(cmd Command) *Request {
	return &Request{Command: cmd}
}

// --- Typed setters ---
// All Set* methods return *Request for fluent chaining:
//   req := Search("hello").SetOffset(0).SetDocs(10)
//
// A value of the wrong kind is dropped silently and leaves the request
// unchanged.

// SetQuery sets the query parameter. query must be a string, an Object or
// a map[string]any.
func (r *Request) SetQuery(query any) *Request {
	switch q := query.(type) {
	case string:
		r.Params.Set(ParamQuery, q)
	default:
		if o, ok := toObject(query); ok {
			r.Params.Set(ParamQuery, maps.Clone(o))
		}
	}
	return r
}

func (r *Request) SetOffset(offset int) *Request {
	r.Params.Set(ParamOffset, int64(offset))
	return r
}

func (r *Request) SetDocs(docs int) *Request {
	r.Params.Set(ParamDocs, int64(docs))
	return r
}

// SetList sets the listing policy. An empty policy is ignored.
// The policy is copied: later changes to list do not reach the request.
func (r *Request) SetList(list Object) *Request {
	if len(list) > 0 {
		r.Params.Set(ParamList, maps.Clone(list))
	}
	return r
}

// SetPath sets one or more facet paths. No paths is a no-op.
func (r *Request) SetPath(paths ...string) *Request {
	if len(paths) > 0 {
		r.Params.Set(ParamPath, slices.Clone(paths))
	}
	return r
}

// SetCr sets the minimum ratio between the occurrence of an alternative and
// the occurrence of the search term.
func (r *Request) SetCr(cr float64) *Request {
	r.Params.Set(ParamCr, cr)
	return r
}

// SetIdif limits how much an alternative may differ from the search term.
func (r *Request) SetIdif(idif float64) *Request {
	r.Params.Set(ParamIdif, idif)
	return r
}

// SetH limits the overall quality estimate of an alternative.
func (r *Request) SetH(h float64) *Request {
	r.Params.Set(ParamH, h)
	return r
}

// SetParam sets an ad-hoc parameter. value must be a number, a string, a
// []string (or []any of strings) or an Object. Empty names and the reserved
// template fields (command, _id, _document) are ignored, and so is an id
// parameter once DocumentIDs is set: both are written as <id> elements.
func (r *Request) SetParam(name string, value any) *Request {
	if name == "" || isReservedField(name) {
		return r
	}
	if name == ParamID && len(r.DocumentIDs) > 0 {
		return r
	}
	if v, ok := normalizeScalar(value); ok {
		r.Params.Set(name, v)
	}
	return r
}

// SetDocumentIDs replaces the document identifiers and removes any id
// parameter. No ids is a no-op.
func (r *Request) SetDocumentIDs(ids ...string) *Request {
	if len(ids) > 0 {
		r.DocumentIDs = slices.Clone(ids)
		r.Params.Delete(ParamID)
	}
	return r
}

// SetDocuments replaces the document payloads. No documents is a no-op.
func (r *Request) SetDocuments(docs ...Document) *Request {
	if len(docs) > 0 {
		r.Documents = slices.Clone(docs)
	}
	return r
}

// Apply sets the field name from a loosely-typed value, the way decoded
// JSON or other dynamic input arrives. Numeric fields accept any Go number
// or json.Number; identifiers and documents are read from the _id and
// _document fields. Values of the wrong kind are dropped silently.
func (r *Request) Apply(name string, value any) *Request {
	switch name {
	case FieldCommand:
		// Only meaningful to FromTemplate.
	case ParamQuery:
		r.SetQuery(value)
	case ParamOffset, ParamDocs, ParamCr, ParamIdif, ParamH:
		if n, ok := normalizeNumber(value); ok {
			r.Params.Set(name, n)
		}
	case ParamList:
		if o, ok := toObject(value); ok {
			r.SetList(o)
		}
	case ParamPath:
		if paths, ok := toStrings(value); ok {
			r.SetPath(paths...)
		}
	case FieldDocumentIDs:
		if ids, ok := toStrings(value); ok {
			r.SetDocumentIDs(ids...)
		}
	case FieldDocuments:
		if docs, ok := toDocuments(value); ok {
			r.SetDocuments(docs...)
		}
	default:
		r.SetParam(name, value)
	}
	return r
}

func isReservedField(name string) bool {
	return name == FieldCommand || name == FieldDocumentIDs || name == FieldDocuments
}

// toDocuments accepts a single document (string, Object, map, Document) or a
// slice of them. One unusable element drops the whole value.
func toDocuments(v any) ([]Document, bool) {
	if d, ok := toDocument(v); ok {
		return []Document{d}, true
	}
	switch docs := v.(type) {
	case []Document:
		return slices.Clone(docs), true
	case []string:
		return RawDocuments(docs...), true
	case []Object:
		out := make([]Document, len(docs))
		for i, o := range docs {
			out[i] = ObjectDocument(o)
		}
		return out, true
	case []map[string]any:
		out := make([]Document, len(docs))
		for i, o := range docs {
			out[i] = ObjectDocument(Object(o))
		}
		return out, true
	case []any:
		out := make([]Document, 0, len(docs))
		for _, e := range docs {
			d, ok := toDocument(e)
			if !ok {
				return nil, false
			}
			out = append(out, d)
		}
		return out, true
	}
	return nil, false
}

func toDocument(v any) (Document, bool) {
	switch d := v.(type) {
	case Document:
		return d, true
	case string:
		return RawDocument(d), true
	}
	if o, ok := toObject(v); ok {
		return ObjectDocument(o), true
	}
	return Document{}, false
}
