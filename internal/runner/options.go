package runner

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/pingsweep/pkg/pingsweep"
	"github.com/projectdiscovery/pingsweep/pkg/probe"
	"github.com/projectdiscovery/pingsweep/pkg/table"
	"github.com/projectdiscovery/pingsweep/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	"github.com/projectdiscovery/utils/errkit"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

const (
	ModePre  = "pre"
	ModePost = "post"

	MethodExec = "exec"
	MethodICMP = "icmp"
)

// Result file names, without extension
const (
	PreResultsName        = "ping_sweep_pre_results"
	PostResultsName       = "ping_sweep_post_results"
	ComparisonResultsName = "ping_sweep_comparison_results"
)

// DefaultComparisonFile is used when -compare is given without a value
const DefaultComparisonFile = ComparisonResultsName + ".csv"

var (
	modes   = []string{ModePre, ModePost}
	methods = []string{MethodExec, MethodICMP}
)

var (
	DefaultTimeout     = envutil.GetEnvOrDefault("PINGSWEEP_TIMEOUT", int(probe.DefaultTimeout.Milliseconds()))
	DefaultConcurrency = envutil.GetEnvOrDefault("PINGSWEEP_CONCURRENCY", pingsweep.DefaultConcurrency)
	DefaultMethod      = envutil.GetEnvOrDefault("PINGSWEEP_METHOD", MethodExec)
)

// Options contains the configuration options for a sweep
type Options struct {
	Mode          string
	List          string
	LocalNetworks bool

	Timeout     int
	Concurrency int
	Method      string
	Privileged  bool

	// Compare is empty unless -compare was given
	Compare   string
	OutputDir string
	JSONL     bool

	ConfigFile string
	Verbose    bool
	Silent     bool
	NoColor    bool
	Version    bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := newFlagSet(options)

	os.Args = append(os.Args[:1], normalizeArgs(flagSet.CommandLine, os.Args[1:])...)
	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	if options.ConfigFile != "" {
		if err := flagSet.MergeConfigFile(options.ConfigFile); err != nil {
			gologger.Fatal().Msgf("Could not read config: %s\n", err)
		}
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if err := options.validate(flagSet.CommandLine.Args()); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}
	return options
}

func newFlagSet(options *Options) *goflags.FlagSet {
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`pingsweep probes every address of a list of IPv4 subnets and diffs a "pre" sweep against a "post" sweep.

Usage: pingsweep [flags] <pre|post> <subnet-file>`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Mode, "mode", "m", "", "sweep mode (pre, post)"),
		flagSet.StringVarP(&options.List, "list", "l", "", "file containing one subnet per line (CIDR or bare address)"),
		flagSet.BoolVarP(&options.LocalNetworks, "local-networks", "ln", false, "also sweep the private /24 networks of the local interfaces"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.Timeout, "timeout", "t", DefaultTimeout, "timeout in milliseconds for each ping"),
		flagSet.IntVarP(&options.Concurrency, "concurrency", "c", DefaultConcurrency, "maximum number of in-flight probes per subnet"),
		flagSet.StringVar(&options.Method, "method", DefaultMethod, "probe method (exec, icmp)"),
		flagSet.BoolVar(&options.Privileged, "privileged", false, "use raw icmp sockets with -method icmp (requires root)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.DynamicVar(&options.Compare, "compare", DefaultComparisonFile, "compare post-sweep results with pre-sweep results and write them to the given file"),
		flagSet.StringVarP(&options.OutputDir, "output-dir", "od", ".", "directory for the pre and post result files"),
		flagSet.BoolVar(&options.JSONL, "jsonl", false, "write results in JSON Lines format"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "flag configuration file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "disable log output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)
	return flagSet
}

// optionalValueFlags take a value only when one directly follows them
var optionalValueFlags = []string{"compare"}

// normalizeArgs moves positional arguments behind the flags so that
// "pre subnets.txt -timeout 200" parses like "-timeout 200 pre subnets.txt".
// "-compare file" is rewritten to "-compare=file".
func normalizeArgs(flags *flag.FlagSet, args []string) []string {
	var options, positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			options = append(options, arg)
			continue
		}

		hasNext := i+1 < len(args) && !strings.HasPrefix(args[i+1], "-")
		switch {
		case sliceutil.Contains(optionalValueFlags, name):
			if hasNext {
				arg += "=" + args[i+1]
				i++
			}
			options = append(options, arg)
		case flags.Lookup(name) == nil, isBoolFlag(flags.Lookup(name)):
			// unknown flags are left for the parser to report, bool flags take no value
			options = append(options, arg)
		default:
			options = append(options, arg)
			if i+1 < len(args) {
				options = append(options, args[i+1])
				i++
			}
		}
	}
	return append(options, positional...)
}

func isBoolFlag(f *flag.Flag) bool {
	if f == nil {
		return false
	}
	boolFlag, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && boolFlag.IsBoolFlag()
}

// validate fills mode and list from the positional arguments and checks
// the option values
func (options *Options) validate(args []string) error {
	if options.Mode == "" && len(args) > 0 {
		options.Mode, args = args[0], args[1:]
	}
	if options.List == "" && len(args) > 0 {
		options.List, args = args[0], args[1:]
	}
	if len(args) > 0 {
		gologger.Warning().Msgf("Ignoring extra arguments: %s", strings.Join(args, " "))
	}

	options.Mode = strings.ToLower(options.Mode)
	options.Method = strings.ToLower(options.Method)

	switch {
	case options.Mode == "":
		return errkit.New(fmt.Sprintf("missing mode, expected one of: %s", strings.Join(modes, ", ")))
	case !sliceutil.Contains(modes, options.Mode):
		return errkit.New(fmt.Sprintf("invalid mode %q, expected one of: %s", options.Mode, strings.Join(modes, ", ")))
	case options.List == "" && !options.LocalNetworks:
		return errkit.New("missing subnet file")
	case options.Timeout <= 0:
		return errkit.New(fmt.Sprintf("invalid timeout %d, must be a positive number of milliseconds", options.Timeout))
	case !sliceutil.Contains(methods, options.Method):
		return errkit.New(fmt.Sprintf("invalid method %q, expected one of: %s", options.Method, strings.Join(methods, ", ")))
	}

	if options.Concurrency <= 0 {
		options.Concurrency = pingsweep.DefaultConcurrency
	}
	if options.OutputDir == "" {
		options.OutputDir = "."
	}
	if options.Compare != "" && options.Mode != ModePost {
		gologger.Warning().Msgf("-compare is only used in %s mode, ignoring", ModePost)
		options.Compare = ""
	}
	return nil
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		probe.SetColors(false)
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) format() table.Format {
	if options.JSONL {
		return table.JSONL
	}
	return table.CSV
}

// resultsPath returns the fixed result file of the given mode
func (options *Options) resultsPath(mode string) string {
	return options.resultsPathFormat(mode, options.format())
}

func (options *Options) resultsPathFormat(mode string, format table.Format) string {
	name := PreResultsName
	if mode == ModePost {
		name = PostResultsName
	}
	return filepath.Join(options.OutputDir, name+format.Extension())
}

// comparisonPath returns where the comparison table is written. The default
// name follows the output directory and format, explicit names are used as is.
func (options *Options) comparisonPath() string {
	if options.Compare == DefaultComparisonFile {
		return filepath.Join(options.OutputDir, ComparisonResultsName+options.format().Extension())
	}
	return options.Compare
}
