// Package panel provides a component rendering framework built on top of
// the html/template package.
//
// panel is organized around Types and Instances. A Type describes a kind
// of component: the template it renders with and three records, each a
// Go struct. The Input record holds what the component is given, the Data
// record holds what its template displays, and the SubComponent record
// holds the components it includes. An Instance is one component of a
// Type, bound to its own records.
//
// Record fields are named by their `panel` struct tag, or by their Go
// name if they have none. A tag of "-" leaves the field out, and a
// ",required" option makes it required when the record is built from a
// map. Fields of embedded structs are promoted, in the order they're
// declared.
//
// To render a component, bind its Input and SubComponent records and call
// Render. The Data record is derived from the Input record, each
// subcomponent is rendered, then the component's template executes. The
// template reaches its Data fields and the HTML of its subcomponents
// through the "data" and "subcomponent" functions:
//
//	<h1>{{ data . "title" }}</h1>
//	{{ subcomponent . "navbar" }}
//
// Subcomponents render with RenderSubcomponent, which builds a fresh
// Input record from overrides and resets the SubComponent record to the
// Type's defaults, so a component renders the same wherever it's
// included.
//
// Templates are loaded from an Environment. Each Instance resolves its
// Environment when it's constructed: the one passed with WithEnvironment,
// then the Type's, then its parent's, then the process-wide default set
// with InitDefaultEnvironment. HTMLEnvironment is the html/template
// Environment; the pongoenv package provides one for pongo2 templates.
//
// The view, echoview, and table packages build on panel to serve
// components over HTTP and to display lists of models.
package panel
