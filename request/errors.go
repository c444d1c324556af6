package request

import "fmt"

// InvalidNameError is returned by the writer when a command, parameter or
// Object key cannot be used as an XML element name.
// Nothing about the connection is affected; the request was rejected
// client-side.
type InvalidNameError struct {
	Name    string
	Message string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid element name %q: %s", e.Name, e.Message)
}

// UnsupportedValueError is returned by the writer when a parameter holds a
// value it cannot render, typically one stored with Params.Set directly.
type UnsupportedValueError struct {
	Name  string
	Value any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value of type %T for element %q", e.Value, e.Name)
}
