package util

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// UnmarshalYamlStrict unmarshals YAML content to a pointer to struct,
// rejecting unknown fields
func UnmarshalYamlStrict(content []byte, output interface{}) error {
	return UnmarshalYamlReader(bytes.NewReader(content), output)
}

// UnmarshalYamlFile loads and unmarshals a YAML file to a pointer to struct
func UnmarshalYamlFile(path string, output interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return UnmarshalYamlReader(file, output)
}

// UnmarshalYamlReader unmarshals YAML from an IO reader to a pointer to struct
func UnmarshalYamlReader(reader io.Reader, output interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true) // only works outside of custom unmarshalers
	return decoder.Decode(output)
}

// MarshalYaml marshals the given source to a YAML string
func MarshalYaml(source interface{}) (string, error) {
	writer := &bytes.Buffer{}
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(source); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return writer.String(), nil
}
