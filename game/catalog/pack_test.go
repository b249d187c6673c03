package catalog

import (
	"errors"
	"strings"
	"testing"
)

const yamlPack = `name: Warmup
description: Small rooms
levels:
  - name: Corridor
    grid:
      - [1, 2, 0, 3]
  - name: Corner
    grid:
      - [0, 0, 0]
      - [0, 1, 0]
      - [2, 0, 3]
`

const jsonPack = `{
  "name": "Json Pack",
  "levels": [
    {"name": "One", "grid": [[1, 0], [2, 3]]}
  ]
}`

func TestDecodePack_YAML(t *testing.T) {
	pack, err := DecodePack("warmup", "warmup.yaml", []byte(yamlPack))
	if err != nil {
		t.Fatalf("DecodePack failed: %v", err)
	}
	if pack.ID != "warmup" || pack.Name != "Warmup" {
		t.Errorf("Unexpected pack identity: id=%s name=%s", pack.ID, pack.Name)
	}
	if pack.Levels.Count() != 2 {
		t.Fatalf("Expected 2 levels, got %d", pack.Levels.Count())
	}
	def, _ := pack.Levels.Get(1)
	if def.Grid[2][0] != CellBox || def.Grid[2][2] != CellTarget {
		t.Errorf("Grid decoded incorrectly: %v", def.Grid)
	}
}

func TestDecodePack_JSON(t *testing.T) {
	pack, err := DecodePack("j", "j.json", []byte(jsonPack))
	if err != nil {
		t.Fatalf("DecodePack failed: %v", err)
	}
	info := pack.Info()
	if info.LevelCount != 1 || info.LevelNames[0] != "One" {
		t.Errorf("Unexpected info: %+v", info)
	}
}

func TestDecodePack_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		level    bool
	}{
		{"malformed yaml", "a.yaml", "name: [", false},
		{"malformed json", "a.json", "{", false},
		{"missing levels", "a.json", `{"name": "x"}`, false},
		{"cell code out of range", "a.json", `{"name": "x", "levels": [{"name": "l", "grid": [[1, 7]]}]}`, false},
		{"unknown field", "a.yaml", "name: x\nauthor: me\nlevels:\n  - name: l\n    grid: [[1]]\n", false},
		{"two players", "a.json", `{"name": "x", "levels": [{"name": "l", "grid": [[1, 1]]}]}`, true},
		{"ragged grid", "a.yml", "name: x\nlevels:\n  - name: l\n    grid: [[1, 0], [0]]\n", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodePack("a", test.filename, []byte(test.data))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.Is(err, ErrInvalidPack) {
				t.Errorf("Expected ErrInvalidPack, got: %v", err)
			}
			if test.level && !errors.Is(err, ErrInvalidLevelDefinition) {
				t.Errorf("Expected ErrInvalidLevelDefinition in chain, got: %v", err)
			}
		})
	}
}

func TestEncodePack_RoundTrip(t *testing.T) {
	data, err := EncodePack("Classic", "reference", Builtin())
	if err != nil {
		t.Fatalf("EncodePack failed: %v", err)
	}
	if !strings.Contains(string(data), "Double Trouble") {
		t.Errorf("Expected encoded pack to contain level names, got:\n%s", data)
	}

	pack, err := DecodePack("classic", "classic.yaml", data)
	if err != nil {
		t.Fatalf("Encoded pack does not decode: %v", err)
	}
	if pack.Levels.Count() != Builtin().Count() {
		t.Errorf("Expected %d levels, got %d", Builtin().Count(), pack.Levels.Count())
	}
}
