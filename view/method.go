package view

import (
	"fmt"
	"strings"
)

// Method is an HTTP method a view can be reached with.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodOptions Method = "OPTIONS"
	MethodHead    Method = "HEAD"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

var methodDescriptions = map[Method]string{
	MethodGet:     "Retrieve data from the server.",
	MethodPost:    "Submit data to the server.",
	MethodPut:     "Update or create a resource on the server.",
	MethodDelete:  "Delete a resource on the server.",
	MethodPatch:   "Apply partial modifications to a resource.",
	MethodOptions: "Describe the communication options for the target resource.",
	MethodHead:    "Retrieve metadata about the resource without the body.",
	MethodTrace:   "Perform a message loop-back test along the path to the target resource.",
	MethodConnect: "Establish a tunnel to the server identified by the target resource.",
}

// Methods returns every Method, in a stable order.
func Methods() []Method {
	return []Method{
		MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch,
		MethodOptions, MethodHead, MethodTrace, MethodConnect,
	}
}

// ParseMethod returns the Method named by s, ignoring case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownMethod)
	}
	return m, nil
}

// Valid reports whether m is one of the known Methods.
func (m Method) Valid() bool {
	_, ok := methodDescriptions[m]
	return ok
}

// Description describes what the method is for. Unknown methods have
// no description.
func (m Method) Description() string {
	return methodDescriptions[m]
}

func (m Method) String() string {
	return string(m)
}
