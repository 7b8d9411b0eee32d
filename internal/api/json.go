package api

import (
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

// jsonSerializer swaps echo's default encoding/json-based serializer for
// goccy/go-json, which the rest of the domain stack is already pulling
// in transitively; this keeps tile-job JSON responses on the faster
// encoder instead of mixing two JSON libraries in one binary.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	return json.NewDecoder(c.Request().Body).Decode(i)
}
