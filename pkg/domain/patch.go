package domain

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Patch is a partial update of a node or edge model, keyed by the model's
// json field names ("label", "x", "source", ...). Values replace whole fields.
type Patch map[string]any

// Keys returns the patch keys in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode decodes loosely typed input (maps, JSON-decoded values, structs) into
// out using json field names. Numbers and strings are converted leniently.
func Decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func fieldsOf(model any) (map[string]any, error) {
	fields := map[string]any{}
	if err := Decode(model, &fields); err != nil {
		return nil, fmt.Errorf("flatten model: %w", err)
	}
	return fields, nil
}

// PickPatch returns the values model currently holds for keys. Fields the
// model leaves empty are picked as nil, which ApplyPatch turns back into the
// zero value.
func PickPatch[T any](model T, keys []string) (Patch, error) {
	fields, err := fieldsOf(model)
	if err != nil {
		return nil, err
	}
	out := make(Patch, len(keys))
	for _, k := range keys {
		out[k] = fields[k]
	}
	return out, nil
}

// ApplyPatch returns a copy of model with every field named in p replaced.
func ApplyPatch[T any](model T, p Patch) (T, error) {
	var out T
	fields, err := fieldsOf(model)
	if err != nil {
		return out, err
	}
	for k, v := range p {
		fields[k] = v
	}
	if err := Decode(fields, &out); err != nil {
		return out, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}
