//go:build ignore

// generate_testdata.go creates standard board datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	tests/testdata/benchmark/small.json   (100 tasks, 3 columns)
//	tests/testdata/benchmark/medium.json  (1000 tasks, 5 columns)
//	tests/testdata/benchmark/large.db     (5000 tasks, 8 columns)
//	tests/testdata/benchmark/huge.db      (20000 tasks, 12 columns)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/kanboard/pkg/storage"
	"github.com/vanderheijden86/kanboard/pkg/testutil"
)

type datasetSpec struct {
	file    string
	tasks   int
	columns int
}

var datasets = []datasetSpec{
	{"small.json", 100, 3},
	{"medium.json", 1000, 5},
	{"large.db", 5000, 8},
	{"huge.db", 20000, 12},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	for _, ds := range datasets {
		fmt.Printf("Generating %s (%d tasks)...\n", ds.file, ds.tasks)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.tasks) // Reproducible per-size
		cfg.IDPrefix = "BENCH"
		cfg.Columns = ds.columns
		cfg.Tasks = ds.tasks
		state := testutil.New(cfg).State()

		path := filepath.Join(outputDir, ds.file)
		_ = os.Remove(path)
		backend, err := storage.Open("", path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", path, err)
			os.Exit(1)
		}
		err = backend.Save(ctx, state)
		backend.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  %d columns, %d tasks\n", len(state.Columns), len(state.Tasks))
	}

	fmt.Println("\nDone! Datasets written to", outputDir)
}
