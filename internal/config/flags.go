package config

import "github.com/spf13/pflag"

var (
	flags *pflag.FlagSet

	flagConfig         *string
	flagDebug          *bool
	flagScale          *float32
	flagReverseWinding *bool
	flagCompression    *string
	flagCacheDir       *string
	flagNoCache        *bool
	flagHalf           *bool
	flagGroup          *int
)

func init() {
	resetFlags()
}

// resetFlags installs a fresh flag set.
func resetFlags() {
	flags = pflag.NewFlagSet("meshforge", pflag.ContinueOnError)

	flagConfig = flags.String("config", "", "Path to config file")
	flagDebug = flags.Bool("debug", false, "Enable debug logging")
	flagScale = flags.Float32("scale", 0, "Fit meshes to this radius (0 keeps source units)")
	flagReverseWinding = flags.Bool("reverse-winding", false, "Reverse triangle winding while parsing")
	flagCompression = flags.String("compression", "", "Vertex compression: none, lz4, zstd, bg4_lz4")
	flagCacheDir = flags.String("cache-dir", "", "Compiled mesh cache directory")
	flagNoCache = flags.Bool("no-cache", false, "Disable the compiled mesh cache")
	flagHalf = flags.Bool("half", false, "Also pack vertices as float16")
	flagGroup = flags.Int("group", -1, "Fragment group to extract (-1 for all)")
}

// Flags returns the flag set so commands can register their own flags
// before ParseFlags.
func Flags() *pflag.FlagSet {
	return flags
}

// ParseFlags parses command-line arguments (without the program name).
func ParseFlags(args []string) error {
	return flags.Parse(args)
}

// Args returns the arguments remaining after flags.
func Args() []string {
	return flags.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. Only flags that were
// set on the command line override file values.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flags.Changed("scale") {
		cfg.Compile.Scale = *flagScale
	}
	if *flagReverseWinding {
		cfg.Compile.ReverseWinding = true
	}
	if *flagCompression != "" {
		cfg.Cache.Compression = *flagCompression
	}
	if *flagCacheDir != "" {
		cfg.Cache.Dir = *flagCacheDir
	}
	if *flagNoCache {
		cfg.Cache.Enabled = false
	}
	if *flagHalf {
		cfg.Compile.Half = true
	}
	if flags.Changed("group") {
		cfg.Compile.Group = *flagGroup
	}
}
