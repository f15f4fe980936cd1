package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/checktree/internal/config"
	"github.com/san-kum/checktree/internal/document"
	"github.com/san-kum/checktree/internal/logging"
	"github.com/san-kum/checktree/internal/store"
	"github.com/san-kum/checktree/internal/tree"
	"github.com/san-kum/checktree/internal/tui"
)

var (
	configFile      string
	preset          string
	dataDir         string
	logLevel        string
	logFile         string
	format          string
	indent          int
	arraysAsObjects bool
	theme           string
	expandDepth     int
	checks          []string
	unchecks        []string
	saveExport      bool
	outFile         string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers the checktree commands and binds their flags. With
// no subcommand the root command opens the interactive browser.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "checktree [file]",
		Short:        "select parts of a JSON or YAML document from a checkbox tree",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runBrowse,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for saved exports")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file ('-' for stderr)")
	pf.StringVar(&format, "format", config.DefaultFormat, "export format (json, yaml)")
	pf.IntVar(&indent, "indent", config.DefaultIndent, "export indentation width")
	pf.BoolVar(&arraysAsObjects, "arrays-as-objects", false, "export lists as objects keyed \"Item N\"")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(tui.ThemeNames(), ", ")+")")
	pf.IntVar(&expandDepth, "expand", config.DefaultExpandDepth, "open branches up to this depth on start")

	browseCmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "open the interactive checkbox tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBrowse,
	}

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "apply selections and print the export",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().BoolVar(&saveExport, "save", false, "save the export to the data directory")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the export to a file instead of stdout")

	showCmd := &cobra.Command{
		Use:   "show [file]",
		Short: "print the tree with check states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}

	statsCmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "summarize the selection",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStats,
	}

	for _, c := range []*cobra.Command{exportCmd, showCmd, statsCmd} {
		c.Flags().StringArrayVar(&checks, "check", nil, "check the node at this path, e.g. \"Parent 1/children\" (repeatable)")
		c.Flags().StringArrayVar(&unchecks, "uncheck", nil, "uncheck the node at this path after all checks (repeatable)")
	}

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "print the built-in sample document",
		Args:  cobra.NoArgs,
		RunE:  runSample,
	}

	historyCmd := &cobra.Command{
		Use:   "history [export_id]",
		Short: "list saved exports or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}

	rootCmd.AddCommand(browseCmd, exportCmd, showCmd, statsCmd, sampleCmd, historyCmd)
	return rootCmd
}

// loadConfig resolves preset, config file and flags, in increasing order of
// precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("format") {
		cfg.Export.Format = format
	}
	if flags.Changed("indent") {
		cfg.Export.Indent = indent
	}
	if flags.Changed("arrays-as-objects") {
		cfg.Export.ArraysAsObjects = arraysAsObjects
	}
	if flags.Changed("theme") {
		cfg.View.Theme = theme
	}
	if flags.Changed("expand") {
		cfg.View.ExpandDepth = expandDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is the state shared by every command: config, logger and the
// loaded tree.
type session struct {
	cfg    *config.Config
	log    *slog.Logger
	closer func() error
	source string
	tree   *tree.Tree
}

func openSession(cmd *cobra.Command, args []string, interactive bool) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// Headless commands log to stderr unless told otherwise; the TUI owns
	// the terminal and only logs to a file.
	logPath := cfg.Log.File
	if logPath == "" && !interactive {
		logPath = "-"
	}
	log, closer, err := logging.Open(cfg.Log.Level, logPath)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, closer: closer, source: "sample"}

	var doc *document.Object
	if len(args) == 0 {
		doc = document.Sample()
	} else {
		s.source = args[0]
		doc, err = document.ReadFile(args[0])
		if err != nil {
			closer()
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	}

	s.tree, err = tree.Build(doc, tree.WithLogger(log))
	if err != nil {
		closer()
		return nil, err
	}
	log.Debug("document loaded", "source", s.source, "nodes", s.tree.Len())
	return s, nil
}

func (s *session) Close() {
	if err := s.closer(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log: %v\n", err)
	}
}

// applySelection checks every path in checks, then unchecks every path in
// unchecks, so an uncheck always wins over a check of the same subtree.
func applySelection(t *tree.Tree, checks, unchecks []string) error {
	for _, p := range checks {
		if err := applyPath(t, p, tree.Checked); err != nil {
			return err
		}
	}
	for _, p := range unchecks {
		if err := applyPath(t, p, tree.Unchecked); err != nil {
			return err
		}
	}
	return nil
}

func applyPath(t *tree.Tree, path string, state tree.CheckState) error {
	id, err := t.Lookup(path)
	if err != nil {
		return err
	}
	return t.Apply(id, state)
}

func (s *session) exportOptions() tree.ExportOptions {
	return tree.ExportOptions{ArraysAsObjects: s.cfg.Export.ArraysAsObjects}
}

func (s *session) encodeExport() ([]byte, error) {
	return document.Encode(s.tree.Export(s.exportOptions()), s.cfg.Export.Format, s.cfg.Export.Indent)
}

func (s *session) save(payload []byte) (string, error) {
	st := store.New(s.cfg.DataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	stats := s.tree.Stats()
	return st.Save(store.ExportMetadata{
		Source:        s.source,
		Format:        s.cfg.Export.Format,
		Leaves:        stats.Leaves,
		CheckedLeaves: stats.CheckedLeaves,
	}, payload)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args, true)
	if err != nil {
		return err
	}
	defer s.Close()

	exported, err := tui.Run(s.tree, tui.Options{
		Source:      s.source,
		Theme:       s.cfg.View.Theme,
		ExpandDepth: s.cfg.View.ExpandDepth,
		Export:      s.exportOptions(),
		Format:      s.cfg.Export.Format,
		Indent:      s.cfg.Export.Indent,
		Save:        s.save,
		Logger:      s.log,
	})
	if err != nil {
		return err
	}
	if len(exported) > 0 {
		os.Stdout.Write(exported)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := applySelection(s.tree, checks, unchecks); err != nil {
		return err
	}
	payload, err := s.encodeExport()
	if err != nil {
		return err
	}

	if saveExport {
		id, err := s.save(payload)
		if err != nil {
			return fmt.Errorf("failed to save export: %w", err)
		}
		s.log.Info("export saved", "id", id, "dir", s.cfg.DataDir)
	}

	if outFile != "" {
		return os.WriteFile(outFile, payload, 0644)
	}
	_, err = os.Stdout.Write(payload)
	return err
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := applySelection(s.tree, checks, unchecks); err != nil {
		return err
	}
	fmt.Print(tui.Render(s.tree, tui.GetTheme(s.cfg.View.Theme)))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := applySelection(s.tree, checks, unchecks); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENTRY\tSTATE\tLEAVES\tCHECKED\tPARTIAL\tCOVERAGE")

	roots := s.tree.Roots()
	coverage := make([]float64, 0, len(roots))
	for _, id := range roots {
		n := s.tree.Node(id)
		st := s.tree.StatsOf(id)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.0f%%\n",
			n.Key(), n.State(), st.Leaves, st.CheckedLeaves, st.PartialBranches, st.Coverage()*100)
		coverage = append(coverage, st.Coverage()*100)
	}
	total := s.tree.Stats()
	fmt.Fprintf(w, "total\t\t%d\t%d\t%d\t%.0f%%\n",
		total.Leaves, total.CheckedLeaves, total.PartialBranches, total.Coverage()*100)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(coverage) == 0 {
		return nil
	}
	if len(coverage) == 1 {
		coverage = append(coverage, coverage[0])
	}

	fmt.Println()
	graph := asciigraph.Plot(coverage,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption("coverage % per top-level entry"),
	)
	fmt.Println(graph)
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := document.Encode(document.Sample(), cfg.Export.Format, cfg.Export.Indent)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := store.New(cfg.DataDir)

	if len(args) == 1 {
		_, payload, err := st.Load(args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(payload)
		return err
	}

	exports, err := st.List()
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		fmt.Println("no saved exports")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tFORMAT\tCHECKED")
	for _, e := range exports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\n",
			e.ID,
			e.Source,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Format,
			e.CheckedLeaves,
			e.Leaves,
		)
	}
	return w.Flush()
}
