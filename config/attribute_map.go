package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap holds the model specific attributes of a component, decoded later into a typed
// config by the component itself.
type AttributeMap map[string]interface{}

// Has returns whether the attribute is set.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Decode decodes the attributes into the struct pointed to by into, matching on json tags.
// Unknown attributes are an error.
func (am AttributeMap) Decode(into interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      into,
		ErrorUnused: true,
	})
	if err != nil {
		return errors.Wrap(err, "error creating decoder for config")
	}
	if err := decoder.Decode(map[string]interface{}(am)); err != nil {
		return errors.Wrap(err, "error decoding attributes")
	}
	return nil
}
