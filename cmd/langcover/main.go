package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"langcover/internal/api"
	"langcover/pkg/config"
	"langcover/pkg/coverage"
	"langcover/pkg/db"
	"langcover/pkg/db/maintenance"
	"langcover/pkg/detector"
	"langcover/pkg/langtable"
	"langcover/pkg/logging"
	"langcover/pkg/model"
	"langcover/pkg/probe"
	"langcover/pkg/store"
	"langcover/pkg/version"
)

const defaultConfigPath = "configs/langcover.yaml"

type options struct {
	configPath    string
	initConfig    bool
	serve         bool
	importTable   bool
	listLanguages bool
	jsonOut       bool
	text          string
	threshold     *float64
	ranges        []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	flags := flag.NewFlagSet("langcover", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: langcover [flags] [RANGE...]\n\n")
		fmt.Fprintf(stderr, "RANGE is a codepoint or an inclusive range: 65, 65..90, 65-90, U+0041..U+005A, 0x41-0x5A\n\n")
		flags.PrintDefaults()
	}

	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the config file")
	flags.BoolVar(&opts.initConfig, "init-config", false, "Generate default config file and exit")
	flags.BoolVar(&opts.serve, "serve", false, "Run the HTTP API")
	flags.BoolVar(&opts.importTable, "import", false, "Copy the language table into the database and exit")
	flags.BoolVar(&opts.listLanguages, "languages", false, "List the loaded languages and exit")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	flags.StringVar(&opts.text, "text", "", "Sample text whose characters are added to the input")
	threshold := flags.Float64("threshold", 0, "Minimum coverage ratio (default from config)")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			v := *threshold
			opts.threshold = &v
		}
	})
	opts.ranges = flags.Args()
	return opts, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	if opts.initConfig {
		if err := config.GenerateDefault(opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", opts.configPath)
		return
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "langcover: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Only the server mirrors its log to the console; the other modes keep
	// stdout for results.
	var console io.Writer
	if opts.serve {
		console = os.Stdout
	}
	cleanupLogs, err := logging.Init(&appCfg.Log, console)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("langcover started", "version", version.Version, "table_source", appCfg.Table.Source)

	if opts.importTable {
		return runImport(ctx, appCfg, out)
	}

	var st store.Store
	if appCfg.Table.Source == config.SourceDB {
		dbConn, s, err := initDB(appCfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()
		st = s
	}

	table, err := loadTable(ctx, appCfg, st)
	if err != nil {
		return fmt.Errorf("failed to load language table: %w", err)
	}
	slog.Info("Language table loaded", "languages", table.Len())

	prov := config.NewProvider(appCfg, st)
	det := detector.New(table, slog.Default())

	switch {
	case opts.serve:
		results := probe.Run(ctx, probe.DefaultTimeout, startupProbes(det, st))
		if err := probe.Analyze(slog.Default(), results); err != nil {
			return fmt.Errorf("startup checks failed: %w", err)
		}
		return runServer(ctx, appCfg, det, table, prov)
	case opts.listLanguages:
		return printLanguages(out, table.Languages(), opts.jsonOut)
	default:
		return runDetect(ctx, opts, det, prov, out)
	}
}

// startupProbes checks that every language is detected from its own
// codepoints, and that the catalog answers when one is open.
func startupProbes(det *detector.Detector, st store.Store) []probe.Probe {
	probes := []probe.Probe{
		{
			Name:     "Language table",
			Critical: true,
			Check: func(ctx context.Context) error {
				table := det.Table()
				if table.Len() == 0 {
					return errors.New("no languages loaded")
				}
				for i := 0; i < table.Len(); i++ {
					lang := table.At(i)
					if !slices.ContainsFunc(det.DetectSet(lang.Codepoints, 1.0), func(m model.Match) bool {
						return m.Code == lang.Code
					}) {
						return fmt.Errorf("language %s is not detected from its own codepoints", lang.Code)
					}
				}
				return nil
			},
		},
	}
	if st != nil {
		probes = append(probes, probe.Probe{
			Name:     "Language catalog",
			Critical: true,
			Check: func(ctx context.Context) error {
				_, err := st.CountLanguages(ctx)
				return err
			},
		})
	}
	return probes
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func loadTable(ctx context.Context, appCfg *config.Config, st store.Store) (*langtable.Table, error) {
	switch appCfg.Table.Source {
	case config.SourceDir:
		return langtable.LoadDir(appCfg.Table.Dir, slog.Default())
	case config.SourceDB:
		if err := maintenance.Run(ctx, st, appCfg.Table.Dir); err != nil {
			return nil, fmt.Errorf("database maintenance failed: %w", err)
		}
		return langtable.LoadStore(ctx, st)
	default:
		return langtable.Default()
	}
}

// importSource picks the file-based table that -import copies: the
// configured directory when it is in use, the embedded set otherwise.
func importSource(appCfg *config.Config) (*langtable.Table, string, error) {
	useDir := appCfg.Table.Source == config.SourceDir
	if appCfg.Table.Source == config.SourceDB && appCfg.Table.Dir != "" {
		if info, err := os.Stat(appCfg.Table.Dir); err == nil && info.IsDir() {
			useDir = true
		}
	}

	if useDir {
		t, err := langtable.LoadDir(appCfg.Table.Dir, slog.Default())
		return t, appCfg.Table.Dir, err
	}
	t, err := langtable.Default()
	return t, config.SourceEmbedded, err
}

func runImport(ctx context.Context, appCfg *config.Config, out io.Writer) error {
	t, source, err := importSource(appCfg)
	if err != nil {
		return fmt.Errorf("failed to load language table: %w", err)
	}

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := maintenance.ImportTable(ctx, st, t, source); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Imported %d languages from %s into %s\n", t.Len(), source, appCfg.DB.Path)
	return err
}

func runDetect(ctx context.Context, opts options, det *detector.Detector, prov config.Provider, out io.Writer) error {
	ranges := make([]coverage.Range, 0, len(opts.ranges))
	for _, arg := range opts.ranges {
		r, err := coverage.ParseRange(arg)
		if err != nil {
			return err
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 && opts.text == "" {
		return errors.New("no input: pass RANGE arguments or -text")
	}

	threshold := prov.Threshold(ctx)
	if opts.threshold != nil {
		threshold = *opts.threshold
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return fmt.Errorf("invalid threshold %v: must be a finite number", threshold)
	}

	input := coverage.Normalize(ranges).Union(coverage.FromString(opts.text))
	matches := det.DetectSet(input, threshold)

	if opts.jsonOut {
		return writeJSON(out, api.DetectResponse{Threshold: threshold, Matches: matches})
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tNATIVE NAME\tCOUNT\tSCORE")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\n", m.Code, m.Name, m.NativeName, m.Count, m.Score)
	}
	return tw.Flush()
}

func printLanguages(out io.Writer, langs []model.Language, jsonOut bool) error {
	if jsonOut {
		return writeJSON(out, langs)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tNATIVE NAME\tCODEPOINTS")
	for _, l := range langs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", l.Code, l.Name, l.NativeName, l.Total)
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServer(ctx context.Context, cfg *config.Config, det *detector.Detector, table *langtable.Table, prov config.Provider) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(&cfg.Server, api.Handlers{
		Detect:    api.NewDetectHandler(det, prov),
		Languages: api.NewLanguagesHandler(table),
		Config:    api.NewConfigHandler(prov, table),
	}, shutdownFunc)

	return runServerLifecycle(ctx, srv, quit, time.Duration(cfg.Server.ShutdownTimeout))
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal, shutdownTimeout time.Duration) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
