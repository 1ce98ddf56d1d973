package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a tri-state PATCH field (RFC 7396):
//   - Present=false: key absent, leave unchanged
//   - Present=true, Value=nil: JSON null
//   - Present=true, Value!=nil: JSON string (possibly "")
//
// For parent_id, null means "move to the top level of the deal".
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs when the key is in the document, which is what
// sets Present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// IsNull reports an explicit JSON null
func (o OptionalString) IsNull() bool {
	return o.Present && o.Value == nil
}
