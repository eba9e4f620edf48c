package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"eventdocs/internal/catalog"
	"eventdocs/internal/config"
	"eventdocs/internal/crawler"
	"eventdocs/internal/generator"
	"eventdocs/internal/graph"
	"eventdocs/internal/observability"
	"eventdocs/internal/pipeline"
	"eventdocs/internal/server"
	"eventdocs/internal/storage"
	"eventdocs/internal/watch"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a catalog project and store its records in the database",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(args) > 0 {
			cfg.Project.Dir = args[0]
		}
		logger := newLogger(cfg)
		defer logger.Sync()

		fmt.Printf("📂 Scanning catalog: %s\n", cfg.Project.Dir)
		cat, err := crawler.NewCrawler(logger).Scan(cfg.Project.Dir)
		if err != nil {
			log.Fatalf("Failed to scan project: %v", err)
		}
		fmt.Printf("✅ Found %d records\n", cat.Len())

		store := openStore(cfg)
		defer store.Close()

		fmt.Printf("💾 Saving to %s...\n", cfg.Storage.DBPath)
		if err := store.SaveRecords(cmd.Context(), cat.Records()); err != nil {
			log.Fatalf("Failed to save records: %v", err)
		}

		printProblems(cat.Problems())
		fmt.Println("🎉 Scan complete!")
	},
}

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the enriched records of a collection from the database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg)
		defer logger.Sync()
		allVersions, _ := cmd.Flags().GetBool("all-versions")

		store := openStore(cfg)
		defer store.Close()

		records, err := storePipeline(cfg, store, logger).Collection(cmd.Context(), args[0], allVersions)
		if err != nil {
			log.Fatalf("Failed to list %s: %v", args[0], err)
		}
		if len(records) == 0 {
			fmt.Printf("No %s found. Run 'eventdocs scan' first.\n", args[0])
			return
		}
		for _, r := range records {
			latest := ""
			if r.IsLatest() {
				latest = " (latest)"
			}
			fmt.Printf("- %s %s%s: %s\n", r.ID, r.Version, latest, r.DisplayName())
		}
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <kind> <id> [version]",
	Short: "Build the architecture graph around one record",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg)
		defer logger.Sync()

		kind, err := graph.ParseKind(args[0])
		if err != nil {
			log.Fatal(err)
		}
		version := ""
		if len(args) == 3 {
			version = args[2]
		}
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode := graph.Mode(modeFlag)
		if mode != graph.ModeSimple && mode != graph.ModeFull {
			log.Fatalf("Unsupported mode: %s", modeFlag)
		}
		format, _ := cmd.Flags().GetString("format")
		save, _ := cmd.Flags().GetBool("save")

		store := openStore(cfg)
		defer store.Close()

		builder := graph.NewBuilder(storePipeline(cfg, store, logger), graph.WithLogger(logger))
		g, err := builder.Build(cmd.Context(), kind, args[1], version, mode)
		if err != nil {
			log.Fatalf("Failed to build graph: %v", err)
		}
		if len(g.Nodes) == 0 {
			fmt.Fprintf(os.Stderr, "⚠️  No %s named %s found, the graph is empty\n", kind, args[1])
		} else {
			fmt.Fprintf(os.Stderr, "🔗 %d nodes, %d edges: %s\n", len(g.Nodes), len(g.Edges), labelSummary(g.LabelCounts()))
		}
		if len(g.Diagnostics) > 0 {
			reasons := make(map[string]int)
			for r, n := range g.DiagnosticReasonCounts() {
				reasons[string(r)] = n
			}
			fmt.Fprintf(os.Stderr, "⚠️  Graph diagnostics: %s\n", labelSummary(reasons))
		}

		switch format {
		case "mermaid":
			fmt.Print((&generator.MermaidGenerator{}).Generate(g))
		case "json":
			out, err := json.MarshalIndent(g, "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode graph: %v", err)
			}
			fmt.Println(string(out))
		default:
			log.Fatalf("Unsupported format: %s", format)
		}

		if save {
			id, err := store.SaveGraph(cmd.Context(), kind, args[1], version, mode, g)
			if err != nil {
				log.Fatalf("Failed to save graph: %v", err)
			}
			fmt.Fprintf(os.Stderr, "💾 Saved graph %s\n", id)
		}
	},
}

// pageKinds are the record types exported as standalone markdown pages.
var pageKinds = []graph.Kind{
	graph.KindEvent, graph.KindCommand, graph.KindQuery,
	graph.KindEntity, graph.KindPolicy, graph.KindView, graph.KindActor,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export llms.txt and optional markdown pages from the database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger(cfg)
		defer logger.Sync()
		out, _ := cmd.Flags().GetString("out")
		pagesDir, _ := cmd.Flags().GetString("pages")
		ctx := cmd.Context()

		store := openStore(cfg)
		defer store.Close()
		p := storePipeline(cfg, store, logger)

		records, err := p.Records(ctx)
		if err != nil {
			log.Fatalf("Failed to load records: %v", err)
		}
		text := generator.LLMSText(records, exportOptions(cfg))
		if err := os.WriteFile(out, []byte(text), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", out, err)
		}
		fmt.Printf("📝 Wrote %s\n", out)

		if pagesDir == "" {
			return
		}
		builder := graph.NewBuilder(p, graph.WithLogger(logger))
		md := generator.NewMarkdownGenerator()
		written := 0
		for _, kind := range pageKinds {
			items, err := p.Collection(ctx, string(kind.Collection()), false)
			if err != nil {
				log.Fatalf("Failed to enrich %s: %v", kind.Collection(), err)
			}
			dir := filepath.Join(pagesDir, string(kind.Collection()))
			if len(items) > 0 {
				if err := os.MkdirAll(dir, 0755); err != nil {
					log.Fatalf("Failed to create %s: %v", dir, err)
				}
			}
			for _, item := range items {
				if item.Hidden {
					continue
				}
				g, err := builder.Build(ctx, kind, item.ID, item.Version, graph.ModeSimple)
				if err != nil {
					log.Fatalf("Failed to build graph for %s: %v", item.Key(), err)
				}
				path := filepath.Join(dir, item.ID+".md")
				if err := os.WriteFile(path, []byte(md.EntityPage(item, g)), 0644); err != nil {
					log.Fatalf("Failed to write %s: %v", path, err)
				}
				written++
			}
		}
		fmt.Printf("📝 Wrote %d pages to %s\n", written, pagesDir)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Scan a catalog project and report unresolved references",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(args) > 0 {
			cfg.Project.Dir = args[0]
		}
		logger := newLogger(cfg)
		defer logger.Sync()
		strict, _ := cmd.Flags().GetBool("strict")

		cat, err := crawler.NewCrawler(logger).Scan(cfg.Project.Dir)
		if err != nil {
			log.Fatalf("Failed to scan project: %v", err)
		}
		p := pipeline.New(cat,
			pipeline.WithLogger(logger),
			pipeline.WithFolderResolver(cat),
			pipeline.WithDirs(cfg.Project.Dir, cfg.Project.WorkDir),
		)
		for _, c := range catalog.All {
			if _, err := p.Collection(cmd.Context(), string(c), true); err != nil {
				log.Fatalf("Failed to enrich %s: %v", c, err)
			}
		}

		printProblems(cat.Problems())
		diags := p.Diagnostics().Items()
		for _, d := range diags {
			fmt.Printf("⚠️  %s\n", d)
		}
		fmt.Printf("✅ Checked %d records: %d unresolved references, %d problems\n",
			cat.Len(), len(diags), len(cat.Problems()))

		if strict && (len(diags) > 0 || len(cat.Problems()) > 0) {
			os.Exit(1)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve collections, graphs and llms.txt over HTTP",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(args) > 0 {
			cfg.Project.Dir = args[0]
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		watchFiles, _ := cmd.Flags().GetBool("watch")
		logger := newLogger(cfg)
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg, logger, watchFiles); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, watchFiles bool) error {
	c := crawler.NewCrawler(logger)
	fmt.Printf("🚀 Scanning catalog: %s\n", cfg.Project.Dir)
	cat, err := c.Scan(cfg.Project.Dir)
	if err != nil {
		return err
	}
	printProblems(cat.Problems())

	metrics := observability.NewCollector("eventdocs")
	mem := storage.NewMemory(cat.Records())
	p := pipeline.New(mem,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithFolderResolver(mem),
		pipeline.WithDirs(cfg.Project.Dir, cfg.Project.WorkDir),
	)
	if cfg.Cache.Disabled {
		p.Cache().Disable()
	}
	builder := graph.NewBuilder(p, graph.WithLogger(logger), graph.WithMetrics(metrics))

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithExport(exportOptions(cfg)),
	}
	if cfg.Storage.DBPath != "" {
		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		opts = append(opts, server.WithGraphStore(store))
	}
	srv := server.New(p, builder, opts...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	})
	if watchFiles {
		w, err := watch.New(cfg.Project.Dir, watch.Rescan(c, cfg.Project.Dir, mem, p, logger), watch.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", cfg.Project.Dir, err)
		}
		fmt.Println("👀 Watching for changes...")
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	fmt.Printf("✨ Serving on %s\n", cfg.Server.Addr)
	return g.Wait()
}

func openStore(cfg *config.Config) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return store
}

func storePipeline(cfg *config.Config, store *storage.SQLiteStore, logger *zap.Logger) *pipeline.Pipeline {
	return pipeline.New(store,
		pipeline.WithLogger(logger),
		pipeline.WithFolderResolver(store),
		pipeline.WithDirs(cfg.Project.Dir, cfg.Project.WorkDir),
	)
}

func exportOptions(cfg *config.Config) generator.LLMSOptions {
	return generator.LLMSOptions{
		Organization: cfg.Export.Organization,
		Tagline:      cfg.Export.Tagline,
		BaseURL:      cfg.Export.BaseURL,
	}
}

// labelSummary renders counts sorted by key, e.g. "informs=1, issues=2".
func labelSummary(counts map[string]int) string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%d", l, counts[l]))
	}
	return strings.Join(parts, ", ")
}

func printProblems(problems []crawler.Problem) {
	if len(problems) == 0 {
		return
	}
	fmt.Printf("⚠️  Skipped %d files:\n", len(problems))
	for _, pr := range problems {
		fmt.Printf("   - %s\n", pr)
	}
}
