package request

import (
	"bytes"
	"encoding/xml"
	"io"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/pior/cps/internal"
)

// Typical request is well under 1 KiB; document batches grow the buffer.
var bufferPool = internal.NewBufferPool(1024)

// ValidateName checks that name can be used as an XML element name.
// Names must start with a letter or underscore and continue with letters,
// digits, '-', '_' or '.'.
func ValidateName(name string) error {
	if name == "" {
		return &InvalidNameError{Name: name, Message: "name is empty"}
	}
	for i, r := range name {
		if r == utf8.RuneError {
			return &InvalidNameError{Name: name, Message: "name is not valid UTF-8"}
		}
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.') {
			continue
		}
		return &InvalidNameError{Name: name, Message: "name contains " + strconv.QuoteRune(r)}
	}
	return nil
}

// WriteRequest serializes req as an XML document and writes it to w.
//
// Layout:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<command>
//	  <param>value</param>...   parameters in insertion order
//	  <id>...</id>...           DocumentIDs
//	  <document>...</document>  Documents
//	</command>
//
// Numbers use their shortest decimal form, booleans are written as true or
// false, strings are escaped, slices become repeated elements and Objects
// become nested elements with keys in sorted order. Raw XML documents are
// written verbatim.
//
// The document is built in a pooled buffer and written with a single Write,
// so nothing reaches w when serialization fails.
func WriteRequest(w io.Writer, req *Request) error {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if err := encodeRequest(buf, req); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Marshal returns the XML document for req.
func Marshal(req *Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeRequest(&buf, req); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeRequest(buf *bytes.Buffer, req *Request) error {
	root := string(req.Command)
	if err := ValidateName(root); err != nil {
		return err
	}

	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)

	start := startElement(root)
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	for name, value := range req.Params.All() {
		if err := encodeValue(enc, name, value); err != nil {
			return err
		}
	}

	for _, id := range req.DocumentIDs {
		if err := encodeText(enc, TagID, id); err != nil {
			return err
		}
	}

	for _, doc := range req.Documents {
		if err := encodeDocument(enc, buf, doc); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(start.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func encodeDocument(enc *xml.Encoder, buf *bytes.Buffer, doc Document) error {
	start := startElement(TagDocument)
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if doc.Fields != nil {
		if err := encodeFields(enc, doc.Fields); err != nil {
			return err
		}
	} else if doc.XML != "" {
		// The encoder buffers internally: flush before writing around it.
		if err := enc.Flush(); err != nil {
			return err
		}
		buf.WriteString(doc.XML)
	}

	return enc.EncodeToken(start.End())
}

func encodeValue(enc *xml.Encoder, name string, value any) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		return encodeText(enc, name, "")
	case string:
		return encodeText(enc, name, v)
	case bool:
		return encodeText(enc, name, strconv.FormatBool(v))
	case []byte:
		return encodeText(enc, name, string(v))
	case []string:
		for _, s := range v {
			if err := encodeText(enc, name, s); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, e := range v {
			if err := encodeValue(enc, name, e); err != nil {
				return err
			}
		}
		return nil
	case []Object:
		for _, o := range v {
			if err := encodeValue(enc, name, o); err != nil {
				return err
			}
		}
		return nil
	case []map[string]any:
		for _, o := range v {
			if err := encodeValue(enc, name, o); err != nil {
				return err
			}
		}
		return nil
	}

	if o, ok := toObject(value); ok {
		start := startElement(name)
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := encodeFields(enc, o); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	}

	if n, ok := normalizeNumber(value); ok {
		return encodeText(enc, name, formatNumber(n))
	}

	// Other typed slices ([]int, []float64, [2]string...) repeat the element.
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			if err := encodeValue(enc, name, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return &UnsupportedValueError{Name: name, Value: value}
}

func encodeFields(enc *xml.Encoder, o Object) error {
	for _, key := range slices.Sorted(maps.Keys(o)) {
		if err := encodeValue(enc, key, o[key]); err != nil {
			return err
		}
	}
	return nil
}

func encodeText(enc *xml.Encoder, name, text string) error {
	start := startElement(name)
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func startElement(name string) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}}
}

func formatNumber(n any) string {
	switch v := n.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
