package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/vanderheijden86/kanboard/pkg/board"
	"github.com/vanderheijden86/kanboard/pkg/config"
	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/metrics"
	"github.com/vanderheijden86/kanboard/pkg/model"
	"github.com/vanderheijden86/kanboard/pkg/storage"
	"github.com/vanderheijden86/kanboard/pkg/ui"
	"github.com/vanderheijden86/kanboard/pkg/version"
	"github.com/vanderheijden86/kanboard/pkg/watcher"
	"github.com/vanderheijden86/kanboard/pkg/workspace"
)

const loadTimeout = 10 * time.Second

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	boardFlag := flag.String("board", "", "Board file, or the name of a board from the config")
	backendFlag := flag.String("backend", "", "Storage backend: json or sqlite (default: from config or file extension)")
	configFlag := flag.String("config", "", "Config file (default: "+config.ConfigPath()+")")
	robotStats := flag.Bool("robot-stats", false, "Print board statistics as JSON and exit")
	statsAll := flag.Bool("stats-all", false, "Print statistics of every configured board as JSON and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: kb [options]")
		fmt.Println("\nA terminal kanban board.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("kb %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *statsAll {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if err := writeStatsAll(ctx, os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	kind, path, err := resolveBoard(cfg, *boardFlag, *backendFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *robotStats {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		store, err := peekBoard(ctx, cfg, kind, path)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening board %s: %v\n", path, err)
			os.Exit(1)
		}
		if err := writeStats(os.Stdout, store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: kb needs a terminal; use --robot-stats for scripted output")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	store, backend, err := openBoard(ctx, cfg, kind, path)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening board %s: %v\n", path, err)
		os.Exit(1)
	}

	os.Exit(finish(os.Stderr, backend, runBoard(cfg, store, backend, path)))
}

// finish closes the backend and reports err on stderr, returning the process
// exit code. os.Exit skips deferred calls, so the backend is closed here.
func finish(stderr io.Writer, backend storage.Backend, err error) int {
	code := 0
	if err != nil {
		fmt.Fprintf(stderr, "Error running kb: %v\n", err)
		code = 1
	}
	if cerr := backend.Close(); cerr != nil {
		fmt.Fprintf(stderr, "Error closing board: %v\n", cerr)
		code = 1
	}
	return code
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveBoard picks the board file and backend. --board may name a board
// from the config; anything else is taken as a path.
func resolveBoard(cfg config.Config, boardArg, backendArg string) (storage.Kind, string, error) {
	kind := storage.Kind(cfg.Storage.Backend)
	path := cfg.BoardPath()

	if boardArg != "" {
		if b := cfg.FindBoard(boardArg); b != nil {
			path = b.ResolvedPath()
			kind = storage.Kind(b.Backend)
		} else {
			path = boardArg
			kind = ""
		}
	}
	if backendArg != "" {
		kind = storage.Kind(backendArg)
	}
	if kind == "" {
		kind = storage.KindForPath(path)
	}
	if kind != storage.KindJSON && kind != storage.KindSQLite {
		return "", "", fmt.Errorf("unknown backend %q (want json or sqlite)", kind)
	}
	if path == "" {
		return "", "", errors.New("no board path: set storage.path or pass --board")
	}
	return kind, path, nil
}

// openBoard loads the board at path into a new store, seeding the default
// columns when nothing has been saved yet.
func openBoard(ctx context.Context, cfg config.Config, kind storage.Kind, path string) (*board.Store, storage.Backend, error) {
	backend, err := storage.Open(kind, path)
	if err != nil {
		return nil, nil, err
	}
	state, err := storage.LoadOrSeed(ctx, backend, cfg.Columns())
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	debug.Log("kb: opened %s board %s (%d columns, %d tasks)", kind, path, len(state.Columns), len(state.Tasks))
	return newStore(cfg, state), backend, nil
}

// peekBoard loads the board for read-only commands. A board that was never
// saved gets the seeded columns and nothing is created on disk.
func peekBoard(ctx context.Context, cfg config.Config, kind storage.Kind, path string) (*board.Store, error) {
	backend, err := storage.OpenExisting(kind, path)
	if errors.Is(err, storage.ErrNotFound) {
		return newStore(cfg, model.BoardState{Columns: cfg.Columns()}), nil
	}
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	state, err := storage.LoadOrSeed(ctx, backend, cfg.Columns())
	if err != nil {
		return nil, err
	}
	return newStore(cfg, state), nil
}

func newStore(cfg config.Config, state model.BoardState) *board.Store {
	store := board.New()
	store.Restore(state)
	store.SetFilter(cfg.FilterMode())
	return store
}

type statsOutput struct {
	Columns int         `json:"columns"`
	Stats   model.Stats `json:"stats"`
}

func writeStats(w io.Writer, store *board.Store) error {
	return writeJSON(w, statsOutput{Columns: len(store.Columns()), Stats: store.Stats()})
}

type boardStats struct {
	Name    string      `json:"name"`
	Path    string      `json:"path"`
	Columns int         `json:"columns"`
	Stats   model.Stats `json:"stats"`
	Missing bool        `json:"missing,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type statsSummary struct {
	Boards      []boardStats `json:"boards"`
	Total       model.Stats  `json:"total"`
	Loaded      int          `json:"loaded"`
	Failed      int          `json:"failed"`
	FailedNames []string     `json:"failed_names,omitempty"`
}

// writeStatsAll reports the configured boards, plus the main board when it
// is not listed among them.
func writeStatsAll(ctx context.Context, w io.Writer, cfg config.Config) error {
	boards := append([]config.Board(nil), cfg.Boards...)
	mainPath := cfg.BoardPath()
	listed := false
	for _, b := range boards {
		if b.ResolvedPath() == mainPath {
			listed = true
			break
		}
	}
	if !listed && mainPath != "" {
		boards = append([]config.Board{{Name: "default", Path: mainPath, Backend: cfg.Storage.Backend}}, boards...)
	}

	results, err := workspace.LoadAll(ctx, boards)
	if err != nil {
		return err
	}
	sum := workspace.Summarize(results)

	out := statsSummary{
		Total:       sum.Stats,
		Loaded:      sum.LoadedBoards,
		Failed:      sum.FailedBoards,
		FailedNames: sum.FailedBoardNames,
	}
	for _, r := range results {
		rb := boardStats{Name: r.Name, Path: r.Path, Columns: r.Columns, Stats: r.Stats, Missing: r.Missing}
		if r.Error != nil {
			rb.Error = r.Error.Error()
		}
		out.Boards = append(out.Boards, rb)
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runBoard(cfg config.Config, store *board.Store, backend storage.Backend, path string) error {
	saver := storage.NewAutosaver(store, backend, storage.WithDelay(cfg.Storage.AutosaveDelay))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if err := saver.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving board: %v\n", err)
		}
	}()

	opts := []ui.Option{
		ui.WithStorage(backend, saver),
		ui.WithColumnWidth(cfg.UI.ColumnWidth),
		ui.WithTitle("kb · " + path),
	}
	if cfg.WatchEnabled() {
		w, err := watcher.New(path, watcher.WithForcePoll(cfg.Watch.ForcePoll))
		if err == nil {
			err = w.Start(context.Background())
		}
		if err != nil {
			debug.Logger().WithError(err).Warn("file watcher disabled")
		} else {
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	m := ui.NewModel(store, opts...)
	defer m.Stop()
	err := runTUIProgram(m)
	logTimings()
	return err
}

// logTimings writes the session's timing metrics to the debug log.
func logTimings() {
	if !debug.Enabled() {
		return
	}
	for _, st := range metrics.AllTimingStats() {
		debug.Logger().WithFields(log.Fields{
			"metric": st.Name,
			"count":  st.Count,
			"avg_ms": st.AvgMs,
			"max_ms": st.MaxMs,
		}).Debug("timing")
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM so pending saves are flushed.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set KB_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("KB_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
