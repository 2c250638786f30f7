package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ideagen/pkg/colors"
)

// PruneRuns removes old run directories under baseDir/runs, keeping the
// newest keep runs. Run IDs start with a timestamp, so lexical order is
// chronological order.
func PruneRuns(baseDir string, keep int) {
	runsDir := filepath.Join(baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return
	}

	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			runs = append(runs, e.Name())
		}
	}
	if len(runs) <= keep {
		return
	}

	// Newest first
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))

	for _, name := range runs[keep:] {
		fmt.Printf("%s %s\n", colors.Paint(colors.Dim, "Deleting old run:"), name)
		os.RemoveAll(filepath.Join(runsDir, name))
	}
}
