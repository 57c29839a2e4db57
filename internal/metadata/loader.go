package metadata

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse validates data against the schema and decodes it. JSON documents
// are accepted as YAML.
func Parse(source string, data []byte) (*Document, error) {
	if err := Validate(source, data); err != nil {
		return nil, err
	}
	doc := &Document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: decode: %w", source, err)
	}
	return doc, nil
}

// Load reads and parses the document at path. A path of "-" reads stdin.
func Load(path string) (*Document, error) {
	data, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// ReadSource returns the raw bytes of path, or of stdin for "-".
func ReadSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return data, nil
}
