// File: internal/selectors/loader.go
package selectors

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogueFile is the on-disk layout of a page catalogue.
type catalogueFile struct {
	Pages []PageConfig `yaml:"pages"`
}

// Load decodes a YAML page catalogue from r and builds a Registry from it.
// Unknown keys are rejected so typos in selector files fail fast.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogueFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("page catalogue is empty")
		}
		return nil, fmt.Errorf("could not decode page catalogue: %w", err)
	}
	if len(file.Pages) == 0 {
		return nil, fmt.Errorf("page catalogue defines no pages")
	}
	return NewRegistry(file.Pages...)
}

// LoadFile reads a YAML page catalogue from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read page catalogue: %w", err)
	}
	reg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Marshal encodes pages in the catalogue file format. Useful for exporting the
// built-in catalogue as a starting point for a custom one.
func Marshal(pages []PageConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(catalogueFile{Pages: pages}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
