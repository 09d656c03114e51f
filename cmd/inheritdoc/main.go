package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"inheritdoc/internal/analysis"
	"inheritdoc/internal/config"
	"inheritdoc/internal/crawler"
	"inheritdoc/internal/export"
	"inheritdoc/internal/extractor"
	"inheritdoc/internal/git"
	"inheritdoc/internal/hierarchy"
	"inheritdoc/internal/index"
	"inheritdoc/internal/manifest"
	"inheritdoc/internal/resolver"
	"inheritdoc/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "inheritdoc",
		Short: "Resolve inherited documentation comments across a type hierarchy",
	}
	dbPath       string
	configPath   string
	manifestPath string
	jsonOutput   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the declaration database (SQLite); overrides config")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "Read declarations from a YAML manifest or JSON snapshot instead of the database")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")

	resolveCmd.Flags().String("cref", "", "Explicit reference to inherit from")
	resolveCmd.Flags().Bool("prefer-own", false, "Return the type's own documentation when present")
	scanCmd.Flags().String("snapshot", "", "Also write the scanned declarations to a JSON snapshot")
	checkCmd.Flags().Bool("strict", false, "Exit non-zero when any inherit directive fails to resolve")
	impactCmd.Flags().String("base", "HEAD", "Git ref to diff against")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(graphCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if manifestPath != "" && filepath.Ext(manifestPath) != ".json" {
		cfg.Project.Manifest = manifestPath
	}
	return cfg
}

// loadRegistry reads the registry from the manifest or snapshot when one is given, otherwise from the database.
func loadRegistry(ctx context.Context, cfg *config.Config) *hierarchy.Registry {
	if filepath.Ext(manifestPath) == ".json" {
		reg, err := index.LoadSnapshot(manifestPath)
		if err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
		return reg
	}
	if manifestPath != "" {
		reg, err := manifest.Build(manifestPath)
		if err != nil {
			log.Fatalf("Failed to load manifest: %v", err)
		}
		return reg
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	reg, err := store.LoadRegistry(ctx)
	if err != nil {
		log.Fatalf("Failed to load declarations: %v", err)
	}
	if reg.Len() == 0 {
		log.Fatalf("No declarations in %s. Run 'inheritdoc scan' first.", cfg.Storage.DBPath)
	}
	return reg
}

func resolveOptions(cfg *config.Config) resolver.Options {
	return resolver.Options{
		PreferOwn:           cfg.Resolve.PreferOwn,
		IncludeUndocumented: cfg.Resolve.IncludeUndocumented,
		Workers:             cfg.Resolve.Workers,
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan C# sources and store the type hierarchy locally",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve path %s: %v", root, err)
		}

		fmt.Printf("📂 Scanning directory: %s\n", absRoot)

		// 1. Setup Extractor & Indexer
		ext, err := extractor.NewExtractor(cfg.Project.Language)
		if err != nil {
			log.Fatalf("Failed to create extractor: %v", err)
		}
		idx := index.NewIndexer(crawler.NewCrawler(ext, cfg.Project.Include, cfg.Project.Exclude))

		// 2. Build Registry
		start := time.Now()
		res, err := idx.BuildRegistry(absRoot, cfg.Project.Manifest)
		if err != nil {
			log.Fatalf("Build failed: %v", err)
		}
		reg := res.Registry
		fmt.Printf("✅ Registry built in %v. %d files, %d types.\n", time.Since(start), res.Scan.Files, reg.Len())
		for _, f := range res.Scan.Failed {
			log.Printf("⚠️ Failed to parse file %s", f)
		}
		if len(reg.Unresolved) > 0 {
			counts := reg.UnresolvedReasonCounts()
			fmt.Printf("  -> %d unresolved references (%d no candidate, %d ambiguous)\n",
				len(reg.Unresolved), counts[hierarchy.ReasonNoCandidate], counts[hierarchy.ReasonAmbiguous])
		}
		if err := reg.Validate(); err != nil {
			log.Printf("⚠️ Hierarchy invariant violated: %v", err)
		}

		// 3. Save to DB
		ctx := context.Background()
		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		fmt.Println("💾 Saving to local database...")
		if err := store.SaveDeclarations(ctx, reg.Declarations()); err != nil {
			log.Fatalf("Failed to save declarations: %v", err)
		}

		if snap, _ := cmd.Flags().GetString("snapshot"); snap != "" {
			if err := index.SaveSnapshot(reg, snap); err != nil {
				log.Fatalf("Failed to write snapshot: %v", err)
			}
			fmt.Printf("📝 Snapshot written to %s\n", snap)
		}

		fmt.Printf("🎉 Scan complete! Database: %s\n", cfg.Storage.DBPath)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <type>",
	Short: "Print the documentation a type inherits",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		reg := loadRegistry(context.Background(), cfg)

		opts := resolveOptions(cfg)
		if preferOwn, _ := cmd.Flags().GetBool("prefer-own"); preferOwn {
			opts.PreferOwn = true
		}
		r := resolver.New(reg, opts)

		q := resolver.Query{TypeID: args[0]}
		node, ok := reg.Lookup(args[0], "")
		if ok {
			q = resolver.QueryFor(node)
		}
		if cref, _ := cmd.Flags().GetString("cref"); cref != "" {
			q.Ref = cref
		}

		res, err := r.Resolve(q)
		if jsonOutput {
			item := resolver.Item{Query: q, Resolution: res}
			if err != nil {
				item.Error = err.Error()
			}
			printJSON(item)
			if err != nil {
				os.Exit(1)
			}
			return
		}
		if err != nil {
			switch {
			case errors.Is(err, resolver.ErrNotFound):
				fmt.Printf("∅ %v\n", err)
			case errors.Is(err, resolver.ErrCyclicHierarchy):
				fmt.Printf("🔁 %v\n", err)
			default:
				fmt.Printf("❌ %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("📖 %s inherits from %s (%s)\n", q.TypeID, res.SourceID, res.Via)
		fmt.Println(res.Block.Text())
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve every inherit directive and report failures",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		reg := loadRegistry(ctx, cfg)

		report, err := resolver.New(reg, resolveOptions(cfg)).ResolveAll(ctx)
		if err != nil {
			log.Fatalf("Resolution aborted: %v", err)
		}

		if manifestPath == "" {
			store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
			if err != nil {
				log.Fatalf("Failed to initialize database: %v", err)
			}
			if err := store.SaveReport(ctx, report); err != nil {
				log.Printf("Warning: failed to save report: %v", err)
			}
			store.Close()
		}

		if jsonOutput {
			printJSON(report)
		} else {
			for _, it := range report.Items {
				if it.Err != nil {
					fmt.Printf("  ❌ %v\n", it.Err)
				}
			}
			s := report.Stats
			fmt.Printf("📊 %d attempted: %d resolved, %d not found, %d unresolved, %d cyclic\n",
				s.Attempted, s.Resolved, s.NotFound, s.Unresolved, s.Cyclic)
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && report.Stats.Resolved != report.Stats.Attempted {
			os.Exit(1)
		}
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact [path]",
	Short: "List declarations whose inherited documentation is affected by git changes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		base, _ := cmd.Flags().GetString("base")
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}

		// 1. Get Local Git Changes, relative to the scan root
		changes, err := git.GetChangedFiles(ctx, root, base)
		if err != nil {
			log.Fatalf("Failed to get git changes: %v", err)
		}
		if len(changes) == 0 {
			fmt.Println("✅ No changes detected.")
			return
		}
		fmt.Printf("📝 Detected %d changed files.\n", len(changes))

		// 2. Impact Analysis
		reg := loadRegistry(ctx, cfg)
		analyzer := analysis.NewAnalyzer(reg, resolver.New(reg, resolveOptions(cfg)))
		report := analyzer.AnalyzeImpact(changes)

		if jsonOutput {
			printJSON(map[string][]string{
				"direct":   nodeIDs(report.DirectlyAffected),
				"indirect": nodeIDs(report.IndirectlyAffected),
			})
			return
		}
		fmt.Printf("  -> %d declarations directly affected\n", len(report.DirectlyAffected))
		for _, id := range nodeIDs(report.DirectlyAffected) {
			fmt.Printf("     %s\n", id)
		}
		fmt.Printf("  -> %d declarations inherit changed documentation\n", len(report.IndirectlyAffected))
		for _, id := range nodeIDs(report.IndirectlyAffected) {
			fmt.Printf("     %s\n", id)
		}
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the type hierarchy as a Mermaid class diagram",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		reg := loadRegistry(context.Background(), cfg)
		fmt.Print(export.Mermaid(reg))
	},
}

func nodeIDs(nodes []*hierarchy.TypeNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}
