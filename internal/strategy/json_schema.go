package strategy

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema renders a strategy config struct as a self-contained JSON
// schema document. The registry exposes it per family so callers can list
// each family's parameters and their constraints.
func ToJSONSchema[T any](t T) (string, error) {
	reflector := new(jsonschema.Reflector)
	reflector.DoNotReference = true

	data, err := json.Marshal(reflector.Reflect(t))
	if err != nil {
		return "", err
	}

	return string(data), nil
}
