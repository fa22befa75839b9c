package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/quadlab/internal/config"
	"github.com/san-kum/quadlab/internal/field"
	"github.com/san-kum/quadlab/internal/quad"
	"github.com/san-kum/quadlab/internal/storage"
	"github.com/san-kum/quadlab/internal/tui"
)

var (
	dataDir string
	verbose bool
	debug   bool

	xMin, xMax    float64
	yMin, yMax    float64
	maxIterations int
	initialNStep  int
	maxError      float64
	inLoge        bool
	fastDensity   bool
	configFile    string
	preset        string

	logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quadlab",
		Short: "adaptive 2-D Simpson quadrature lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quadlab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "per-iteration diagnostics")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "per-sample diagnostics")

	integrateCmd := &cobra.Command{
		Use:   "integrate [field]",
		Short: "integrate a built-in field until convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  runIntegrate,
	}
	addIntegrationFlags(integrateCmd)

	liveCmd := &cobra.Command{
		Use:   "live [field]",
		Short: "integrate with a live convergence view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addIntegrationFlags(liveCmd)

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "list built-in fields",
		RunE:  listFields,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [field]",
		Short: "list presets for a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for field: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's convergence trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(integrateCmd, liveCmd, fieldsCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger() error {
	if !verbose && !debug {
		return nil
	}
	zcfg := zap.NewDevelopmentConfig()
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func addIntegrationFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&xMin, "xmin", math.NaN(), "x lower bound (default: field's)")
	cmd.Flags().Float64Var(&xMax, "xmax", math.NaN(), "x upper bound (default: field's)")
	cmd.Flags().Float64Var(&yMin, "ymin", math.NaN(), "y lower bound (default: field's)")
	cmd.Flags().Float64Var(&yMax, "ymax", math.NaN(), "y upper bound (default: field's)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", config.DefaultMaxIterations, "iteration budget")
	cmd.Flags().IntVar(&initialNStep, "initial-nstep", config.DefaultInitialNStep, "initial resolution power")
	cmd.Flags().Float64Var(&maxError, "max-error", config.DefaultMaxError, "convergence tolerance (percent)")
	cmd.Flags().BoolVar(&inLoge, "in-loge", false, "sample axes uniformly in ln(x)")
	cmd.Flags().BoolVar(&fastDensity, "fast-density-increase", false, "refine both axes every iteration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves precedence: preset, then config file, then CLI flags.
// Axis bounds default to the catalog entry's domain.
func buildConfig(cmd *cobra.Command, fieldName string) (*config.Config, field.Integral, error) {
	in, err := field.Lookup(fieldName)
	if err != nil {
		return nil, field.Integral{}, err
	}

	cfg := config.DefaultConfig()
	cfg.Field = fieldName
	cfg.X = config.AxisConfig{Min: in.XMin, Max: in.XMax}
	cfg.Y = config.AxisConfig{Min: in.YMin, Max: in.YMax}

	if preset != "" {
		p := config.GetPreset(fieldName, preset)
		if p == nil {
			return nil, field.Integral{}, fmt.Errorf("unknown preset: %s (available: %v)",
				preset, config.ListPresets(fieldName))
		}
		*cfg = *p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, field.Integral{}, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *fileCfg
		if cfg.Field != "" && cfg.Field != fieldName {
			return nil, field.Integral{}, fmt.Errorf("config file is for field %q, not %q", cfg.Field, fieldName)
		}
		cfg.Field = fieldName
	}

	// a preset or file may leave bounds unset; fall back to the field's domain
	if cfg.X.Min == cfg.X.Max {
		cfg.X = config.AxisConfig{Min: in.XMin, Max: in.XMax}
	}
	if cfg.Y.Min == cfg.Y.Max {
		cfg.Y = config.AxisConfig{Min: in.YMin, Max: in.YMax}
	}

	if cmd.Flags().Changed("xmin") {
		cfg.X.Min = xMin
	}
	if cmd.Flags().Changed("xmax") {
		cfg.X.Max = xMax
	}
	if cmd.Flags().Changed("ymin") {
		cfg.Y.Min = yMin
	}
	if cmd.Flags().Changed("ymax") {
		cfg.Y.Max = yMax
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = maxIterations
	}
	if cmd.Flags().Changed("initial-nstep") {
		cfg.InitialNStep = initialNStep
	}
	if cmd.Flags().Changed("max-error") {
		cfg.MaxError = maxError
	}
	if cmd.Flags().Changed("in-loge") {
		cfg.InLoge = inLoge
	}
	if cmd.Flags().Changed("fast-density-increase") {
		cfg.FastDensityIncrease = fastDensity
	}

	if err := cfg.Validate(); err != nil {
		return nil, field.Integral{}, err
	}
	return cfg, in, nil
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	cfg, in, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	counting := field.NewCounting(in.F)
	integ := quad.NewSimpson2D(cfg.Options())
	integ.SetLogger(logger)

	fmt.Printf("integrating %s over [%g, %g] x [%g, %g]...\n",
		cfg.Field, cfg.X.Min, cfg.X.Max, cfg.Y.Min, cfg.Y.Max)
	start := time.Now()

	res, integErr := integ.Integrate(context.Background(), counting, cfg.XRange(), cfg.YRange())
	elapsed := time.Since(start)

	if res != nil {
		if _, saveErr := saveRun(cfg, res); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save run: %v\n", saveErr)
		}
	}

	if integErr != nil {
		var nc *quad.ErrNotConverged
		if errors.As(integErr, &nc) {
			// unrecoverable by contract: an unconverged estimate must
			// never be mistaken for a result
			fmt.Fprintf(os.Stderr, "fatal: %v\n", nc)
			os.Exit(1)
		}
		return integErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("integral: %.12g\n", res.Value)
	fmt.Printf("estimated error: %.6g %%\n", res.ErrEstimate)
	fmt.Printf("iterations: %d\n", res.Iterations)
	fmt.Printf("field evaluations: %d\n", counting.Calls())
	if !math.IsNaN(in.Value) && sameDomain(cfg, in) {
		fmt.Printf("known value: %.12g (deviation %.3g %%)\n",
			in.Value, 100*math.Abs(res.Value-in.Value)/math.Abs(in.Value))
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, in, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	res, integErr := tui.Run(cfg.Field, func(obs quad.Observer) (*quad.Result, error) {
		integ := quad.NewSimpson2D(cfg.Options())
		integ.SetLogger(logger)
		integ.AddObserver(obs)
		return integ.Integrate(context.Background(), in.F, cfg.XRange(), cfg.YRange())
	})

	if res != nil {
		if _, saveErr := saveRun(cfg, res); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save run: %v\n", saveErr)
		}
	}

	var nc *quad.ErrNotConverged
	if errors.As(integErr, &nc) {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", nc)
		os.Exit(1)
	}
	return integErr
}

func sameDomain(cfg *config.Config, in field.Integral) bool {
	return cfg.X.Min == in.XMin && cfg.X.Max == in.XMax &&
		cfg.Y.Min == in.YMin && cfg.Y.Max == in.YMax
}

func saveRun(cfg *config.Config, res *quad.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	runID, err := st.Save(cfg, res)
	if err != nil {
		return "", err
	}
	fmt.Printf("run id: %s\n", runID)
	return runID, nil
}

func listFields(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDOMAIN\tVALUE\tDESCRIPTION")
	for _, in := range field.Catalog() {
		value := "-"
		if !math.IsNaN(in.Value) {
			value = fmt.Sprintf("%.10g", in.Value)
		}
		fmt.Fprintf(w, "%s\t[%g, %g] x [%g, %g]\t%s\t%s\n",
			in.Name, in.XMin, in.XMax, in.YMin, in.YMax, value, in.Description)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFIELD\tTIME\tVALUE\tERR%\tITERS\tEVALS\tCONVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.8g\t%.4g\t%d\t%d\t%t\n",
			run.ID,
			run.Field,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Value,
			run.ErrEstimate,
			run.Iterations,
			run.Evaluations,
			run.Converged,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no trace to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("field: %s\n", meta.Field)
	fmt.Printf("converged: %t\n\n", meta.Converged)

	sums := make([]float64, len(trace))
	for i, it := range trace {
		sums[i] = it.Sum
	}
	fmt.Println(asciigraph.Plot(sums,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("integral estimate per iteration"),
	))
	fmt.Println()

	errs := make([]float64, 0, len(trace))
	for _, it := range trace {
		if math.IsNaN(it.ErrPct) || it.ErrPct <= 0 {
			continue
		}
		errs = append(errs, math.Log10(it.ErrPct))
	}
	if len(errs) > 1 {
		fmt.Println(asciigraph.Plot(errs,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("log10(estimated error %)"),
		))
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
