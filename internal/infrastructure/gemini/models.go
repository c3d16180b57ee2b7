package gemini

import "fmt"

// Model identifies a Gemini web model together with the request header value
// that selects it. An empty Header means the backend picks its default.
type Model struct {
	Name   string
	Header string
}

// ModelUnspecified selects whatever default model the web app currently
// serves. It is a real catalog entry, not a fallback for unknown names.
const ModelUnspecified = "unspecified"

// UnsupportedModelError reports a requested model outside the catalog.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("model %q is not supported", e.Model)
}

var catalog = []Model{
	{Name: ModelUnspecified},
	{Name: "gemini-2.0-flash", Header: `[1,null,null,null,"f299729663a2343f"]`},
	{Name: "gemini-2.0-flash-thinking", Header: `[1,null,null,null,"9c17b1863f581b8a"]`},
	{Name: "gemini-2.5-flash", Header: `[1,null,null,null,"35609594dbe934d8"]`},
	{Name: "gemini-2.5-pro", Header: `[1,null,null,null,"2525e3954d185b3c"]`},
	{Name: "gemini-2.5-exp-advanced", Header: `[1,null,null,null,"203e6bb81620bcfe"]`},
	{Name: "gemini-2.0-exp-advanced", Header: `[1,null,null,null,"f8f8f5ea629f5d37"]`},
}

var modelsByName = func() map[string]Model {
	m := make(map[string]Model, len(catalog))
	for _, model := range catalog {
		m[model.Name] = model
	}
	return m
}()

// ResolveModel maps a requested model name onto the catalog. Matching is
// exact and case sensitive.
func ResolveModel(name string) (Model, error) {
	model, ok := modelsByName[name]
	if !ok {
		return Model{}, &UnsupportedModelError{Model: name}
	}
	return model, nil
}

// Models returns the catalog in its stable listing order.
func Models() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}
