package fault

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Returns a decodeHook function that can be used to unmarshal faults from
// configuration using mapstructure. This supports configuration solutions
// like spf13/viper that use mapstructure to unmarshal yaml files.
func DecodeHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, entry interface{}) (interface{}, error) {
		if t == reflect.TypeOf((*Fault)(nil)).Elem() {
			// If the target type is Fault, create the correct variant from
			// the configuration entry
			return FromConfigEntry(entry)
		}
		// Otherwise, return the entry as is (default behaviour)
		return entry, nil
	}
}

// FromConfigEntry creates a fault from a decoded configuration entry
// (a map with a "type" field) by dispatching through FromSpec.
func FromConfigEntry(entry interface{}) (Fault, error) {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("fault entry cannot be parsed to map[string]interface{}: %v", entry)
	}

	var spec Spec
	decoderConfig := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &spec,
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(m); err != nil {
		return nil, err
	}

	return FromSpec(spec)
}
