package docpatch

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ToJSONPatch converts p into a github.com/evanphx/json-patch/v5 Patch.
// Kinds JSON cannot carry natively travel as extended wrappers.
func ToJSONPatch(p Patch) (jsonpatch.Patch, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	jp, err := jsonpatch.DecodePatch(b)
	if err != nil {
		return nil, fmt.Errorf("docpatch: cannot convert to jsonpatch.Patch: %w", err)
	}
	return jp, nil
}

// FromJSONPatch converts a github.com/evanphx/json-patch/v5 Patch.
func FromJSONPatch(jp jsonpatch.Patch) (Patch, error) {
	b, err := json.Marshal(jp)
	if err != nil {
		return nil, fmt.Errorf("docpatch: cannot marshal jsonpatch.Patch; pass bytes instead: %w", err)
	}
	return ParsePatch(b)
}
