// Package workspace loads several board files at once so their statistics
// can be reported together.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/kanboard/pkg/board"
	"github.com/vanderheijden86/kanboard/pkg/config"
	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/model"
	"github.com/vanderheijden86/kanboard/pkg/storage"
)

// maxParallel bounds concurrent loads; each one may hold a file descriptor
// or a database connection.
const maxParallel = 16

// LoadResult contains the result of loading a single board.
type LoadResult struct {
	Name    string
	Path    string
	Columns int
	Stats   model.Stats

	// Missing is set when the board has never been saved.
	Missing bool

	// Error is set if loading failed.
	Error error
}

// Summary aggregates load results.
type Summary struct {
	TotalBoards      int
	LoadedBoards     int
	FailedBoards     int
	FailedBoardNames []string
	Stats            model.Stats
}

// LoadAll loads every board concurrently. Individual failures are recorded
// in their LoadResult and never abort the others; the returned error is only
// set when ctx ends first.
func LoadAll(ctx context.Context, boards []config.Board) ([]LoadResult, error) {
	if len(boards) == 0 {
		return nil, errors.New("no boards configured")
	}

	results := make([]LoadResult, len(boards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, b := range boards {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = LoadResult{Name: b.Name, Path: b.ResolvedPath(), Error: gctx.Err()}
				return nil
			default:
			}
			results[i] = loadBoard(gctx, b)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	debug.Log("workspace: loaded %d boards", len(boards))
	return results, nil
}

func loadBoard(ctx context.Context, b config.Board) LoadResult {
	res := LoadResult{Name: b.Name, Path: b.ResolvedPath()}

	backend, err := storage.OpenExisting(storage.Kind(b.Backend), res.Path)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		res.Missing = true
		return res
	case err != nil:
		res.Error = err
		return res
	}
	defer backend.Close()

	state, err := backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		res.Missing = true
		return res
	case err != nil:
		res.Error = fmt.Errorf("load board %s: %w", b.Name, err)
		debug.Logger().WithError(err).WithField("board", b.Name).Warn("board failed to load")
		return res
	}

	// Restoring drops orphaned tasks so the counts match what the board shows.
	s := board.New()
	s.Restore(state)
	res.Columns = len(s.Columns())
	res.Stats = s.Stats()
	return res
}

// Summarize returns a summary of the load results.
func Summarize(results []LoadResult) Summary {
	summary := Summary{TotalBoards: len(results)}
	for _, r := range results {
		if r.Error != nil {
			summary.FailedBoards++
			summary.FailedBoardNames = append(summary.FailedBoardNames, r.Name)
			continue
		}
		summary.LoadedBoards++
		summary.Stats = summary.Stats.Add(r.Stats)
	}
	return summary
}
