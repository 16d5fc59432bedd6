package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/termai/termai/internal/build"
	"github.com/termai/termai/internal/fileutil"
)

// Load builds the configuration by instantiating a ConfigLoader with
// the provided options and invoking its Load method.
func Load(opts ...ConfigLoaderOption) (*Config, error) {
	loader := NewConfigLoader(opts...)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// ConfigLoader reads and merges configuration from the config file,
// environment variables prefixed with TERMAI_, and an optional .env
// file in the config directory.
type ConfigLoader struct {
	lock       sync.Mutex
	configFile string
	warnings   []string
}

// ConfigLoaderOption is a functional option for the loader.
type ConfigLoaderOption func(*ConfigLoader)

// WithConfigFile sets an explicit configuration file path.
func WithConfigFile(configFile string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.configFile = configFile
	}
}

func NewConfigLoader(options ...ConfigLoaderOption) *ConfigLoader {
	loader := &ConfigLoader{}
	for _, option := range options {
		option(loader)
	}
	return loader
}

// Load initializes viper, reads the config file if present, and builds
// a validated Config.
func (l *ConfigLoader) Load() (*Config, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	homeDir := fileutil.MustGetUserHomeDir()
	resolver := newPathResolver(
		strings.ToUpper(build.Slug)+"_HOME",
		filepath.Join(homeDir, "."+build.Slug),
		xdg.DataHome,
		xdg.ConfigHome,
	)
	l.warnings = append(l.warnings, resolver.warnings...)

	// A .env next to the config file feeds the environment before
	// viper binds it; missing files are fine.
	_ = godotenv.Load(filepath.Join(resolver.ConfigDir, ".env"))

	v := viper.New()
	l.setupViper(v, resolver)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var def definition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg, err := l.buildConfig(def, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}
	cfg.Warnings = l.warnings
	cfg.Global.ConfigPath = v.ConfigFileUsed()
	return cfg, nil
}

func (l *ConfigLoader) setupViper(v *viper.Viper, resolver pathResolver) {
	v.SetEnvPrefix(strings.ToUpper(build.Slug))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(resolver.ConfigDir)
	}

	v.SetDefault("debug", false)
	v.SetDefault("logFormat", "text")
	v.SetDefault("quiet", false)

	v.SetDefault("paths.dataDir", resolver.DataDir)
	v.SetDefault("paths.logDir", resolver.LogDir)

	v.SetDefault("terminal.cols", 120)
	v.SetDefault("terminal.rows", 32)
	v.SetDefault("terminal.agentTimeoutSeconds", 30)

	v.SetDefault("intent.refineThreshold", 0.55)
}

func (l *ConfigLoader) buildConfig(def definition, resolver pathResolver) (*Config, error) {
	var cfg Config

	cfg.Global = Global{
		Debug:     def.Debug,
		LogFormat: def.LogFormat,
		Quiet:     def.Quiet,
		LaunchCwd: launchCwd(),
	}

	cfg.Paths = Paths{
		ConfigDir: resolver.ConfigDir,
		DataDir:   resolver.DataDir,
		LogDir:    resolver.LogDir,
	}
	if def.Paths != nil {
		if def.Paths.DataDir != "" {
			cfg.Paths.DataDir = fileutil.ResolvePath(def.Paths.DataDir)
		}
		if def.Paths.LogDir != "" {
			cfg.Paths.LogDir = fileutil.ResolvePath(def.Paths.LogDir)
		}
	}

	cfg.Terminal = Terminal{
		Shell:        os.Getenv("SHELL"),
		Cols:         120,
		Rows:         32,
		AgentTimeout: 30 * time.Second,
	}
	if def.Terminal != nil {
		if def.Terminal.Shell != "" {
			cfg.Terminal.Shell = def.Terminal.Shell
		}
		if def.Terminal.Cols > 0 {
			cfg.Terminal.Cols = def.Terminal.Cols
		}
		if def.Terminal.Rows > 0 {
			cfg.Terminal.Rows = def.Terminal.Rows
		}
		if def.Terminal.AgentTimeoutSeconds > 0 {
			cfg.Terminal.AgentTimeout = time.Duration(def.Terminal.AgentTimeoutSeconds) * time.Second
		}
	}

	cfg.Intent = Intent{RefineThreshold: 0.55}
	if def.Intent != nil && def.Intent.RefineThreshold > 0 {
		if def.Intent.RefineThreshold > 1 {
			return nil, fmt.Errorf("intent.refineThreshold must be in (0, 1], got %v", def.Intent.RefineThreshold)
		}
		cfg.Intent.RefineThreshold = def.Intent.RefineThreshold
	}

	if def.LLM != nil {
		cfg.LLM = LLM{Provider: def.LLM.Provider, Model: def.LLM.Model}
	}

	return &cfg, nil
}

// launchCwd prefers the directory the wrapper recorded before any
// shell integration could chdir away.
func launchCwd() string {
	if dir := os.Getenv(strings.ToUpper(build.Slug) + "_LAUNCH_CWD"); dir != "" && fileutil.IsDir(dir) {
		return dir
	}
	return fileutil.MustGetwd()
}
