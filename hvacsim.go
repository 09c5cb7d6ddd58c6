// Fuzzy vs PID HVAC control simulator

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"example.com/fuzzy-hvac/base/zaplog"

	"example.com/fuzzy-hvac/benchmark"

	"example.com/fuzzy-hvac/core/config"
	"example.com/fuzzy-hvac/core/fuzzy"
	"example.com/fuzzy-hvac/core/server"
	"example.com/fuzzy-hvac/core/sim"

	"example.com/fuzzy-hvac/driver/plot"
)

const (
	controllerPID   = "pid"
	controllerFuzzy = "fuzzy"

	defaultAPIAddr = "127.0.0.1:8080"
)

var (
	log *zap.Logger
)

func initLogger(verbose bool) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeCaller = func(
		caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		p := caller.TrimmedPath()
		if len(p) > 30 {
			p = "..." + p[len(p)-27:]
		}
		enc.AppendString(fmt.Sprintf("%30s", p))
	}
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	var err error
	log, err = c.Build()
	if err != nil {
		panic(err)
	}
	zaplog.SetLogger(log)
}

func runMonitor(log *zap.Logger, addr string) {
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, nil)
	log.Fatal("failed to serve metrics", zap.Error(err))
}

func loadSetup(configFile string) sim.Setup {
	err := config.LoadDotEnv()
	if err != nil {
		log.Fatal("failed to load .env file", zap.Error(err))
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	err = cfg.ApplyEnv(os.Getenv)
	if err != nil {
		log.Fatal("failed to apply environment", zap.Error(err))
	}
	setup, err := cfg.Setup()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	return setup
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func printRuns(w io.Writer, runs []sim.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Run\tRise [min]\tOvershoot [%]\tSettling [min]\tSS error [°C]\tIAE\tISE\tITAE\t")
	for _, r := range runs {
		pm := r.Performance
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%.3f\t%.2f\t%.2f\t%.2f\t\n",
			r.Label,
			formatOptional(pm.RiseTime),
			pm.Overshoot,
			formatOptional(pm.SettlingTime),
			pm.SteadyStateError,
			pm.IAE, pm.ISE, pm.ITAE)
	}
	return tw.Flush()
}

func report(runs []sim.Run, plotFile string, showDist bool) {
	err := printRuns(os.Stdout, runs)
	if err != nil {
		log.Fatal("failed to print results", zap.Error(err))
	}
	if showDist {
		for _, r := range runs {
			fmt.Printf("\n%s: |error| distribution [°C]\n", r.Label)
			err = sim.ErrorDistribution(r.Result).Print(os.Stdout)
			if err != nil {
				log.Fatal("failed to print distribution", zap.Error(err))
			}
		}
	}
	if plotFile != "" {
		err = plot.WriteComparison(plotFile, runs...)
		if err != nil {
			log.Fatal("failed to write plot", zap.Error(err), zap.String("file", plotFile))
		}
		log.Info("plot written", zap.String("file", plotFile))
	}
}

func runSimulation(configFile, controller, plotFile string, showDist bool) {
	setup := loadSetup(configFile)
	run, err := setup.RunOne(controller, log)
	if err != nil {
		log.Fatal("simulation failed", zap.Error(err))
	}
	report([]sim.Run{run}, plotFile, showDist)
}

func runComparison(configFile, experiment, plotFile string, showDist bool) {
	setup := loadSetup(configFile)
	var runs []sim.Run
	var err error
	switch experiment {
	case "controllers":
		runs, err = setup.CompareControllers(log)
	case "disturbances":
		runs, err = setup.CompareDisturbances(log)
	case "methods":
		runs, err = setup.CompareMethods(log)
	default:
		panic("unexpected experiment")
	}
	if err != nil {
		log.Fatal("experiment failed", zap.Error(err), zap.String("experiment", experiment))
	}
	report(runs, plotFile, showDist)
}

func printSurface(w io.Writer, s fuzzy.Surface) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s \\ %s\t", s.YVar, s.XVar)
	for _, x := range s.X {
		fmt.Fprintf(tw, "%.1f\t", x)
	}
	fmt.Fprintln(tw)
	for i, y := range s.Y {
		fmt.Fprintf(tw, "%.1f\t", y)
		for _, z := range s.Z[i] {
			fmt.Fprintf(tw, "%.1f\t", z)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func runSurface(configFile string, resolution int) {
	setup := loadSetup(configFile)
	c, err := setup.NewFuzzy(setup.Fuzzy.Method, log)
	if err != nil {
		log.Fatal("failed to create controller", zap.Error(err))
	}
	c.History = nil
	s, err := c.Surface(fuzzy.TemperatureVar, fuzzy.ErrorVar, resolution)
	if err != nil {
		log.Fatal("failed to compute control surface", zap.Error(err))
	}
	err = printSurface(os.Stdout, s)
	if err != nil {
		log.Fatal("failed to print control surface", zap.Error(err))
	}
}

func runBenchmark(configFile, controller string, numGoroutine, numStep int, monitorAddr string) {
	setup := loadSetup(configFile)
	if monitorAddr != "" {
		go runMonitor(log, monitorAddr)
	}
	hg, err := benchmark.RunControllerBenchmark(log, os.Stdout, setup, controller, numGoroutine, numStep)
	if err != nil {
		log.Fatal("benchmark failed", zap.Error(err))
	}
	log.Info("step latency",
		zap.Float64("p50_us", float64(hg.ValueAtQuantile(50))/1000),
		zap.Float64("p99_us", float64(hg.ValueAtQuantile(99))/1000),
		zap.Float64("max_us", float64(hg.Max())/1000))
}

func runServer(configFile, addr string) {
	setup := loadSetup(configFile)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := server.Serve(ctx, addr, setup, log)
	if err != nil {
		log.Fatal("failed to serve API", zap.Error(err))
	}
}

func exitWithUsage() {
	fmt.Println("usage: hvacsim <run|compare|disturb|defuzz|surface|benchmark|serve|x> [flags]")
	os.Exit(1)
}

func validController(c string) bool {
	c = strings.ToLower(c)
	return c == controllerPID || c == controllerFuzzy
}

func main() {
	var (
		verbose      bool
		configFile   string
		controller   string
		plotFile     string
		showDist     bool
		resolution   int
		numGoroutine int
		numStep      int
		monitorAddr  string
		apiAddr      string
	)

	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	compareFlags := flag.NewFlagSet("compare", flag.ExitOnError)
	disturbFlags := flag.NewFlagSet("disturb", flag.ExitOnError)
	defuzzFlags := flag.NewFlagSet("defuzz", flag.ExitOnError)
	surfaceFlags := flag.NewFlagSet("surface", flag.ExitOnError)
	benchmarkFlags := flag.NewFlagSet("benchmark", flag.ExitOnError)
	serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{runFlags, compareFlags, disturbFlags, defuzzFlags,
		surfaceFlags, benchmarkFlags, serveFlags} {
		fs.BoolVar(&verbose, "verbose", false, "Verbose logging")
		fs.StringVar(&configFile, "config", "", "Config file")
	}
	for _, fs := range []*flag.FlagSet{runFlags, compareFlags, disturbFlags, defuzzFlags} {
		fs.StringVar(&plotFile, "plot", "", "Plot file (.pdf, .png, .svg)")
		fs.BoolVar(&showDist, "dist", false, "Print the absolute error distribution")
	}

	runFlags.StringVar(&controller, "controller", controllerFuzzy, "Controller (pid, fuzzy)")

	surfaceFlags.IntVar(&resolution, "resolution", 11, "Grid points per axis")

	benchmarkFlags.StringVar(&controller, "controller", controllerFuzzy, "Controller (pid, fuzzy)")
	benchmarkFlags.IntVar(&numGoroutine, "goroutines", 1, "Number of concurrent loops")
	benchmarkFlags.IntVar(&numStep, "steps", 100_000, "Steps per loop")
	benchmarkFlags.StringVar(&monitorAddr, "monitor", "", "Metrics address")

	serveFlags.StringVar(&apiAddr, "addr", defaultAPIAddr, "Listen address")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	switch os.Args[1] {
	case runFlags.Name():
		err := runFlags.Parse(os.Args[2:])
		if err != nil || runFlags.NArg() != 0 {
			exitWithUsage()
		}
		if !validController(controller) {
			exitWithUsage()
		}
		initLogger(verbose)
		runSimulation(configFile, strings.ToLower(controller), plotFile, showDist)
	case compareFlags.Name():
		err := compareFlags.Parse(os.Args[2:])
		if err != nil || compareFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runComparison(configFile, "controllers", plotFile, showDist)
	case disturbFlags.Name():
		err := disturbFlags.Parse(os.Args[2:])
		if err != nil || disturbFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runComparison(configFile, "disturbances", plotFile, showDist)
	case defuzzFlags.Name():
		err := defuzzFlags.Parse(os.Args[2:])
		if err != nil || defuzzFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runComparison(configFile, "methods", plotFile, showDist)
	case surfaceFlags.Name():
		err := surfaceFlags.Parse(os.Args[2:])
		if err != nil || surfaceFlags.NArg() != 0 {
			exitWithUsage()
		}
		if resolution < 2 {
			exitWithUsage()
		}
		initLogger(verbose)
		runSurface(configFile, resolution)
	case benchmarkFlags.Name():
		err := benchmarkFlags.Parse(os.Args[2:])
		if err != nil || benchmarkFlags.NArg() != 0 {
			exitWithUsage()
		}
		if !validController(controller) || numGoroutine < 1 || numStep < 1 {
			exitWithUsage()
		}
		initLogger(verbose)
		runBenchmark(configFile, strings.ToLower(controller), numGoroutine, numStep, monitorAddr)
	case serveFlags.Name():
		err := serveFlags.Parse(os.Args[2:])
		if err != nil || serveFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runServer(configFile, apiAddr)
	case "x":
		runX()
	default:
		exitWithUsage()
	}
}
