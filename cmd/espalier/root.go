package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/tui"
)

// ConfigFileName is read from the module directory when present.
const ConfigFileName = "espalier.yaml"

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a term rewriting engine",
	Long: `Espalier loads rewriting modules from Markdown, JSON or YAML files and
reduces, rewrites and searches terms with them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addPersistentFlags(rootCmd.PersistentFlags())
}

func addPersistentFlags(pf *pflag.FlagSet) {
	pf.String("dir", ".", "Directory containing the module files")
	pf.StringP("module", "m", "", "Module to use (default: main, index, the directory name or the only module)")
	pf.String("log-level", "", "Log level on stderr (debug, info, warn, error); empty disables logging")
	pf.Bool("json", false, "Print results as JSON")
	pf.String("redis", "", "Redis address for sessions and published modules")
	pf.Bool("redis-modules", false, "Load modules from Redis instead of the directory")
	pf.String("module-key", cli.DefaultModuleKey, "Redis hash holding published modules")
	pf.Int("condition-bound", 0, "Rewrite steps allowed per rewrite condition (0 uses the default)")
	pf.String("session-key", "", "Hex-encoded AES-256 key sealing stored sessions")
	pf.String("config", "", "Config file (default: espalier.yaml in --dir)")
}

// loadConfig layers flags over ESPALIER_* environment variables over the
// config file. Flag names map to keys as is and to variables upper-cased
// with dashes turned into underscores. A non-empty dir overrides --dir.
func loadConfig(flags *pflag.FlagSet, dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("ESPALIER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if dir != "" {
		v.Set("dir", dir)
	}

	path := v.GetString("config")
	if path == "" {
		candidate := filepath.Join(v.GetString("dir"), ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return v, nil
}

// buildOptions resolves the shared settings of cmd. A positional directory
// stands in for --dir when the flag is not set.
func buildOptions(cmd *cobra.Command, args []string) (*viper.Viper, cli.Options, error) {
	var dir string
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}
	v, err := loadConfig(cmd.Flags(), dir)
	if err != nil {
		return nil, cli.Options{}, err
	}
	opts := cli.Options{
		RepoPath:       v.GetString("dir"),
		Module:         v.GetString("module"),
		LogLevel:       v.GetString("log-level"),
		ConditionBound: v.GetInt("condition-bound"),
		JSON:           v.GetBool("json"),
		RedisAddr:      v.GetString("redis"),
		RedisModules:   v.GetBool("redis-modules"),
		ModuleKey:      v.GetString("module-key"),
		SessionKey:     v.GetString("session-key"),
	}
	if opts.RepoPath == "" {
		opts.RepoPath = "."
	}
	return v, opts, nil
}

func newPrinter(opts cli.Options) *cli.Printer {
	p := &cli.Printer{Out: os.Stdout, JSON: opts.JSON}
	if !opts.JSON {
		p.Render = tui.NewRenderer(os.Stdout)
	}
	return p
}
