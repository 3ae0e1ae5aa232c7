package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/erduoya77/obsidian-kanban/internal/board"
	"github.com/erduoya77/obsidian-kanban/internal/config"
	"github.com/erduoya77/obsidian-kanban/internal/linkindex"
	"github.com/erduoya77/obsidian-kanban/internal/logging"
	"github.com/erduoya77/obsidian-kanban/internal/mdast"
	"github.com/erduoya77/obsidian-kanban/internal/settings"
	"github.com/erduoya77/obsidian-kanban/internal/storage"
	"github.com/erduoya77/obsidian-kanban/internal/treeop"
)

// env bundles the shared dependencies every command needs.
type env struct {
	cfg      *config.Config
	logger   *log.Logger
	resolver *settings.Resolver
	store    *storage.FS
	index    linkindex.Index
}

// setup loads configuration, applies persistent flag overrides, and
// wires the shared dependencies.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("vault"); v != "" {
		cfg.VaultDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	opts := logging.DefaultOptions()
	opts.Level = logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(opts)

	return &env{
		cfg:      cfg,
		logger:   logger,
		resolver: settings.NewResolver(cfg.BoardDefaults()),
		store:    storage.NewFS(),
		index:    linkindex.NewFS(cfg.VaultDir),
	}, nil
}

// loadBoard reads and builds one document. The returned resolver
// layers the document's settings footer over the config defaults, so
// commands honor per-document options the same way the builder does.
func (e *env) loadBoard(cmd *cobra.Command, path string) (*board.Board, *settings.Resolver, error) {
	text, err := e.store.Read(cmd.Context(), path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := mdast.Parse(text, mdast.Options{
		Path:        path,
		DateTrigger: e.resolver.String(settings.KeyDateTrigger),
		TimeTrigger: e.resolver.String(settings.KeyTimeTrigger),
	})
	if err != nil {
		return nil, nil, err
	}
	b, err := board.NewBuilder(e.resolver, e.index).Build(doc)
	if err != nil {
		return nil, nil, err
	}
	footerJSON := ""
	if doc.Settings != nil {
		footerJSON = doc.Settings.JSON
	}
	r, err := e.resolver.WithDocument(footerJSON)
	if err != nil {
		return nil, nil, err
	}
	return b, r, nil
}

// saveBoard serializes and persists a document's board.
func (e *env) saveBoard(cmd *cobra.Command, path string, b *board.Board) error {
	text, err := board.Serialize(b)
	if err != nil {
		return err
	}
	return e.store.Write(cmd.Context(), path, text)
}

// parsePath turns "1,2" into a tree path.
func parsePath(arg string) (treeop.Path, error) {
	parts := strings.Split(arg, ",")
	p := make(treeop.Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", arg, err)
		}
		p = append(p, n)
	}
	if len(p) == 0 || len(p) > 2 {
		return nil, fmt.Errorf("path %q: want 1 or 2 indices", arg)
	}
	return p, nil
}

// printBoard writes a compact lane/item listing.
func printBoard(cmd *cobra.Command, b *board.Board) {
	for li, lane := range b.Lanes {
		title := lane.Title
		if title == "" {
			title = "(untitled)"
		}
		marker := ""
		if lane.CompleteMarker {
			marker = " [complete]"
		}
		cmd.Printf("%d. %s%s (%d items)\n", li, title, marker, len(lane.Items))
		for ii, item := range lane.Items {
			cmd.Printf("   %d. [%c] %s\n", ii, item.CheckChar, item.Title)
		}
	}
	if len(b.Archive) > 0 {
		cmd.Printf("Archive: %d items\n", len(b.Archive))
	}
	for _, e := range b.Errors {
		cmd.Printf("error: %s\n", e.Error())
	}
}
