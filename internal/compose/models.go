package compose

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is the subset of a docker-compose file the scanner understands.
// Unknown top-level fields are ignored.
type Document struct {
	Version  string             `yaml:"version"`
	Services map[string]Service `yaml:"services"`
}

// Service is one named entry below `services`. Unknown fields are ignored.
type Service struct {
	Image         string      `yaml:"image"`
	Ports         Ports       `yaml:"ports"`
	Environment   Environment `yaml:"environment"`
	ContainerName string      `yaml:"container_name"`
}

// Environment holds the normalized environment of a service.
//
// Compose accepts either a mapping or a list of KEY=VALUE strings, both
// shapes decode into the same map. List entries without '=' and mapping
// entries with a null value are dropped, any other shape decodes to an empty
// environment.
type Environment map[string]string

// UnmarshalYAML implements yaml.Unmarshaler for both environment shapes.
func (e *Environment) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var asMap map[interface{}]interface{}
	if err := unmarshal(&asMap); err == nil {
		env := make(Environment, len(asMap))
		for key, value := range asMap {
			// A null value is taken from the host shell by compose, it is not set here.
			if value == nil {
				continue
			}
			env[scalarString(key)] = scalarString(value)
		}
		*e = env
		return nil
	}

	var asList []interface{}
	if err := unmarshal(&asList); err != nil {
		// Any other shape carries no usable variables.
		*e = Environment{}
		return nil
	}

	env := make(Environment, len(asList))
	for _, item := range asList {
		key, value, ok := strings.Cut(scalarString(item), "=")
		if !ok {
			continue
		}
		env[key] = value
	}
	*e = env
	return nil
}

// Lookup returns the value of the first key present in the environment.
// A key set to an empty value counts as present.
func (e Environment) Lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := e[key]; ok {
			return value, true
		}
	}
	return "", false
}

// Ports is the ordered list of published ports in "host:container" form.
//
// Short syntax entries are kept as written. Numeric entries are turned into
// strings and the long syntax (published/target mapping) is folded into
// "published:target" so that the first entry always carries the host port.
type Ports []string

// UnmarshalYAML implements yaml.Unmarshaler for the short and long port syntax.
func (p *Ports) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw []interface{}
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("ports must be a list: %w", err)
	}

	ports := make(Ports, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[interface{}]interface{}:
			published := scalarString(v["published"])
			target := scalarString(v["target"])
			switch {
			case published != "" && target != "":
				ports = append(ports, published+":"+target)
			case target != "":
				// Without a published port the container port is not reachable from the host.
				ports = append(ports, ":"+target)
			}
		case nil:
			continue
		default:
			ports = append(ports, scalarString(v))
		}
	}
	*p = ports
	return nil
}

// scalarString renders a decoded YAML scalar as compose would pass it to the container.
func scalarString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
