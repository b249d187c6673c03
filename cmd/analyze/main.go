// Command analyze prints quick, human-readable heuristics about the level
// packs in a levels directory (default "levels"). It summarizes dimensions,
// box and target counts, a lower bound on pushes based on Manhattan
// distance, and highlights boxes that can never reach a target.
//
// It exits non-zero when any level has a dead box.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/logging"
)

// LevelAnalysis is the heuristic summary of one level.
type LevelAnalysis struct {
	Name           string
	Width, Height  int
	Boxes          int
	Targets        int
	SurplusTargets int
	// PushLowerBound sums, per box, the distance to its nearest target.
	PushLowerBound int
	// DeadBoxes are boxes off target that no push can bring to one.
	DeadBoxes []engine.Position
}

func main() {
	dir := "levels"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	logger := logging.NewLogger(os.Stderr, logging.LevelWarn)
	packs, err := catalog.NewManager(dir, logger)
	if err != nil {
		fmt.Printf("Error opening levels: %v\n", err)
		os.Exit(1)
	}

	infos, err := packs.ListPacks()
	if err != nil {
		fmt.Printf("Error listing packs: %v\n", err)
		os.Exit(1)
	}

	dead := 0
	for _, info := range infos {
		pack, err := packs.LoadPack(info.ID)
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", info.ID, err)
			continue
		}
		fmt.Printf("\n=== Analyzing %s (%s) ===\n", pack.Name, pack.ID)
		dead += printPack(os.Stdout, pack)
	}

	if dead > 0 {
		os.Exit(1)
	}
}

// printPack writes the analysis of every level and returns how many dead
// boxes were found.
func printPack(w io.Writer, pack *catalog.Pack) int {
	dead := 0
	for i := 0; i < pack.Levels.Count(); i++ {
		def, err := pack.Levels.Get(i)
		if err != nil {
			continue
		}
		a := analyzeLevel(def)
		dead += len(a.DeadBoxes)

		fmt.Fprintf(w, "\nLevel %d: %s\n", i+1, a.Name)
		fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
		fmt.Fprintf(w, "Boxes: %d, Targets: %d\n", a.Boxes, a.Targets)
		if a.SurplusTargets > 0 {
			fmt.Fprintf(w, "Surplus Targets: %d\n", a.SurplusTargets)
		}
		fmt.Fprintf(w, "Push Lower Bound: %d\n", a.PushLowerBound)

		if len(a.DeadBoxes) > 0 {
			fmt.Fprintf(w, "⚠️  CRITICAL: %d boxes can never reach a target!\n", len(a.DeadBoxes))
			for _, p := range a.DeadBoxes {
				fmt.Fprintf(w, "   Dead box: row %d, column %d\n", p.Row+1, p.Col+1)
			}
		} else {
			fmt.Fprintf(w, "✅ No box starts in a dead position\n")
		}
	}
	return dead
}

func analyzeLevel(def catalog.LevelDefinition) LevelAnalysis {
	a := LevelAnalysis{
		Name:   def.Name,
		Width:  def.Width(),
		Height: def.Height(),
	}

	var boxes, targets []engine.Position
	for r, row := range def.Grid {
		for c, cell := range row {
			switch cell {
			case catalog.CellBox:
				boxes = append(boxes, engine.Position{Row: r, Col: c})
			case catalog.CellTarget:
				targets = append(targets, engine.Position{Row: r, Col: c})
			}
		}
	}
	a.Boxes = len(boxes)
	a.Targets = len(targets)
	a.SurplusTargets = len(targets) - len(boxes)

	for _, box := range boxes {
		nearest := -1
		for _, t := range targets {
			if d := abs(box.Row-t.Row) + abs(box.Col-t.Col); nearest < 0 || d < nearest {
				nearest = d
			}
		}
		if nearest > 0 {
			a.PushLowerBound += nearest
		}
		if isDead(box, targets, a.Width, a.Height) {
			a.DeadBoxes = append(a.DeadBoxes, box)
		}
	}
	return a
}

// isDead reports whether a box off target is pinned to a grid edge with no
// target along it. The player can never stand beyond the edge, so such a box
// only ever slides along that edge. Corners pin it on both axes.
func isDead(box engine.Position, targets []engine.Position, width, height int) bool {
	top, bottom := box.Row == 0, box.Row == height-1
	left, right := box.Col == 0, box.Col == width-1

	if (top || bottom) && (left || right) {
		return true
	}
	if top || bottom {
		for _, t := range targets {
			if t.Row == box.Row {
				return false
			}
		}
		return true
	}
	if left || right {
		for _, t := range targets {
			if t.Col == box.Col {
				return false
			}
		}
		return true
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
