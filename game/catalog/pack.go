package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var (
	ErrPackNotFound = errors.New("level pack not found")
	ErrInvalidPack  = errors.New("invalid level pack")
)

// packSchema describes the on-disk level pack document.
const packSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "levels"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "levels": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/$defs/level"}
    }
  },
  "$defs": {
    "level": {
      "type": "object",
      "required": ["name", "grid"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "grid": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "integer", "minimum": 0, "maximum": 3}
          }
        }
      }
    }
  }
}`

var compiledPackSchema = jsonschema.MustCompileString("levelpack.schema.json", packSchema)

// Pack is a named, validated catalog loaded from a file or compiled in.
type Pack struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Levels      *Catalog `json:"-"`
}

// Info summarizes the pack for listings.
func (p *Pack) Info() *PackInfo {
	return &PackInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		LevelCount:  p.Levels.Count(),
		LevelNames:  p.Levels.Names(),
	}
}

// PackInfo provides information about a level pack.
type PackInfo struct {
	ID          string   `json:"id"` // The identifier to use for session creation
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	LevelCount  int      `json:"level_count"`
	LevelNames  []string `json:"level_names"`
}

// packFile mirrors the on-disk document.
type packFile struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Levels      []LevelDefinition `json:"levels" yaml:"levels"`
}

// DecodePack parses a level pack document. The format is chosen from the
// filename extension: .yaml and .yml are YAML, anything else is JSON.
func DecodePack(id, filename string, data []byte) (*Pack, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, filename, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, filename, err)
		}
	}

	// Round-trip through JSON so YAML documents hand the schema validator
	// the same value shapes encoding/json produces.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, filename, err)
	}
	var generic any
	if err := json.Unmarshal(normalized, &generic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, filename, err)
	}
	if err := compiledPackSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, filename, err)
	}

	var file packFile
	if err := json.Unmarshal(normalized, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPack, filename, err)
	}

	levels, err := New(file.Levels)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPack, filename, err)
	}

	return &Pack{
		ID:          id,
		Name:        file.Name,
		Description: file.Description,
		Levels:      levels,
	}, nil
}

// EncodePack renders a catalog as a YAML level pack document.
func EncodePack(name, description string, levels *Catalog) ([]byte, error) {
	file := packFile{Name: name, Description: description}
	for i := 0; i < levels.Count(); i++ {
		def, err := levels.Get(i)
		if err != nil {
			return nil, err
		}
		file.Levels = append(file.Levels, def)
	}
	return yaml.Marshal(file)
}
