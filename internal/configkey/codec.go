package configkey

import (
	"fmt"
	"strings"

	"github.com/nvandessel/resultagg/internal/constants"
)

// Property is one name=value token of a configuration key.
type Property struct {
	Name  string
	Value string
}

// Properties is a decoded configuration key in token order.
type Properties []Property

// Get returns the value of the named property.
func (p Properties) Get(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// Names returns the property names in token order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}

// MalformedKeyError is returned for a key token that is not name=value.
type MalformedKeyError struct {
	Key   string
	Token string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed configuration key %q: token %q is not name=value", e.Key, e.Token)
}

// Codec decodes configuration keys and records their property names in Registry.
type Codec struct {
	Registry *Registry
}

// NewCodec returns a codec registering into reg. A nil reg gets a fresh registry.
func NewCodec(reg *Registry) *Codec {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Codec{Registry: reg}
}

// Decode splits key on "_" and every token on its first "=".
// Names are registered only when the whole key decodes, so a rejected key
// leaves the registry unchanged.
func (c *Codec) Decode(key string) (Properties, error) {
	props, err := Parse(key)
	if err != nil {
		return nil, err
	}
	for _, prop := range props {
		c.Registry.RegisterIfAbsent(prop.Name)
	}
	return props, nil
}

// Parse decodes key without registering anything.
func Parse(key string) (Properties, error) {
	tokens := strings.Split(key, constants.TokenSeparator)
	props := make(Properties, 0, len(tokens))
	for _, token := range tokens {
		name, value, ok := strings.Cut(token, constants.ValueSeparator)
		if !ok || name == "" {
			return nil, &MalformedKeyError{Key: key, Token: token}
		}
		props = append(props, Property{Name: name, Value: value})
	}
	return props, nil
}
