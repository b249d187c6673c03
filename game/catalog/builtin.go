package catalog

// BuiltinPackID is the identifier under which the compiled-in levels are served.
const BuiltinPackID = "builtin"

// builtinLevels are the three reference levels.
var builtinLevels = []LevelDefinition{
	{
		Name: "Getting Started",
		Grid: [][]Cell{
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 1, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 3, 0, 0},
			{0, 0, 0, 2, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
		},
	},
	{
		Name: "Double Trouble",
		Grid: [][]Cell{
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 1, 0, 0, 0, 0, 0, 0},
			{0, 0, 2, 0, 0, 3, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 2, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 3, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
		},
	},
	{
		Name: "The Puzzle",
		Grid: [][]Cell{
			{0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 1, 0, 0, 0, 0, 0},
			{0, 0, 2, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 2, 0, 0, 0},
			{0, 0, 0, 0, 0, 2, 0, 0},
			{0, 3, 0, 0, 0, 0, 0, 0},
			{0, 0, 3, 0, 0, 0, 3, 0},
			{0, 0, 0, 0, 0, 0, 0, 0},
		},
	},
}

// Builtin returns the catalog of reference levels.
func Builtin() *Catalog {
	return MustNew(builtinLevels)
}

// BuiltinPack returns the reference levels wrapped as a pack.
func BuiltinPack() *Pack {
	return &Pack{
		ID:          BuiltinPackID,
		Name:        "Classic",
		Description: "The three reference levels",
		Levels:      Builtin(),
	}
}
