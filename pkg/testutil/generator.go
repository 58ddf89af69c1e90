// Package testutil provides deterministic board fixtures and invariant
// assertions shared by the package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/kanboard/pkg/board"
	"github.com/vanderheijden86/kanboard/pkg/model"
)

// GeneratorConfig controls board generation.
type GeneratorConfig struct {
	Seed          int64     // Random seed for determinism (0 = use current time)
	IDPrefix      string    // Prefix for ids (default: "T")
	BaseTime      time.Time // Base time for timestamps (default: fixed time)
	Columns       int       // Number of columns (default: 3)
	Tasks         int       // Number of tasks spread over the columns
	CompletedRate float64   // Probability a task starts completed
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		IDPrefix:      "T",
		BaseTime:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Columns:       3,
		Tasks:         12,
		CompletedRate: 0.3,
	}
}

// Generator creates board fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "T"
	}
	if cfg.Columns <= 0 {
		cfg.Columns = 3
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// State builds a board state: columns c0..cN-1 in order, tasks assigned to
// random columns in storage order with creation times a minute apart.
func (g *Generator) State() model.BoardState {
	var st model.BoardState
	for i := 0; i < g.cfg.Columns; i++ {
		st.Columns = append(st.Columns, model.Column{
			ID:    ColumnID(i),
			Title: fmt.Sprintf("Column %d", i),
			Order: i,
		})
	}
	for i := 0; i < g.cfg.Tasks; i++ {
		st.Tasks = append(st.Tasks, model.Task{
			ID:        fmt.Sprintf("%s%d", g.cfg.IDPrefix, i),
			Text:      fmt.Sprintf("task %d", i),
			Completed: g.rng.Float64() < g.cfg.CompletedRate,
			CreatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Minute),
			ColumnID:  ColumnID(g.rng.Intn(g.cfg.Columns)),
		})
	}
	return st
}

// Store returns a board store restored from State, with sequential ids and
// a fixed clock for anything added later.
func (g *Generator) Store() *board.Store {
	s := board.New(
		board.WithIDGenerator(SequentialIDs("id")),
		board.WithClock(FixedClock(g.cfg.BaseTime)),
	)
	s.Restore(g.State())
	return s
}

// ColumnID returns the id the generator gives to column i.
func ColumnID(i int) string {
	return fmt.Sprintf("c%d", i)
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// FixedClock returns a clock that advances one second per call from base.
func FixedClock(base time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// QuickStore returns a store with the default fixture.
func QuickStore() *board.Store {
	return NewDefault().Store()
}
