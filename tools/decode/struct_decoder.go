package decode

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Decode maps a loosely-typed payload (typically the map[string]any a
// JSON frame carries) onto a typed payload struct, honoring json tags.
// RFC3339 strings decode into time.Time fields.
func Decode[T any](in any) (*T, error) {
	if in == nil {
		return nil, errors.New("nil payload")
	}
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build decoder")
	}
	if err := dec.Decode(in); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return &out, nil
}
