package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"keepgen.dev/pkg/keepgen/internal/controller"
	"keepgen.dev/pkg/keepgen/internal/section"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "keepgen"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	templatesFlagName   = "templates"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"
	openMarkerFlagName  = "open-marker"
	closeMarkerFlagName = "close-marker"
	runParallelFlagName = "parallel"
	dryRunFlagName      = "dry-run"
	diffFlagName        = "diff"
	noProtectFlagName   = "no-protect"
	debounceFlagName    = "debounce"

	templatesConfigKey   = "templates"
	markersOpenKey       = "markers.open"
	markersCloseKey      = "markers.close"
	commentTagsKey       = "comment_tags"
	runParallelConfigKey = "run.parallel"
	runProtectedKey      = "run.protected"
	dryRunConfigKey      = "output.dry_run"
	diffConfigKey        = "output.diff"
	uiTUIKey             = "ui.tui"
	watchDebounceKey     = "watch.debounce"

	defaultRunParallel   = 1
	defaultRunProtected  = true
	defaultDryRun        = false
	defaultDiff          = false
	defaultUITUI         = "auto"
	defaultWatchDebounce = 200 * time.Millisecond

	envPrefix = "KEEPGEN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".keepgen.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultTemplates = []string{"."}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(templatesConfigKey, defaultTemplates)
	viper.SetDefault(markersOpenKey, section.DefaultOpenMarker)
	viper.SetDefault(markersCloseKey, section.DefaultCloseMarker)
	viper.SetDefault(commentTagsKey, map[string][]string{})
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runProtectedKey, defaultRunProtected)
	viper.SetDefault(dryRunConfigKey, defaultDryRun)
	viper.SetDefault(diffConfigKey, defaultDiff)
	viper.SetDefault(uiTUIKey, defaultUITUI)
	viper.SetDefault(watchDebounceKey, defaultWatchDebounce.String())

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return
		}

		slog.Warn("failed to read config", "file", configFileName, "error", err)
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// configuredMarkers returns the tag markers from flags, env or config.
func configuredMarkers() section.Markers {
	return section.Markers{
		Open:  viper.GetString(markersOpenKey),
		Close: viper.GetString(markersCloseKey),
	}.WithDefaults()
}

// configuredTemplates returns the template search paths.
func configuredTemplates() []string {
	var paths []string

	for _, path := range viper.GetStringSlice(templatesConfigKey) {
		if strings.TrimSpace(path) != "" {
			paths = append(paths, path)
		}
	}

	if len(paths) == 0 {
		return defaultTemplates
	}

	return paths
}

// buildRegistry returns the built-in comment tags plus those from comment_tags.
func buildRegistry() *section.Registry {
	registry := section.NewRegistry()

	extra := viper.GetStringMapStringSlice(commentTagsKey)

	fileTypes := make([]string, 0, len(extra))
	for fileType := range extra {
		fileTypes = append(fileTypes, fileType)
	}

	sort.Strings(fileTypes)

	for _, fileType := range fileTypes {
		for _, leader := range extra[fileType] {
			registry.Register(fileType, leader)
		}
	}

	return registry
}

// useTUI resolves ui.tui: true, false or auto (interactive terminals only).
func useTUI() bool {
	switch strings.ToLower(strings.TrimSpace(viper.GetString(uiTUIKey))) {
	case "true", "on", "yes", "1":
		return true
	case "false", "off", "no", "0":
		return false
	default:
		return controller.IsTTY(os.Stdout)
	}
}

// flagOrConfigBool returns the flag value when the user set it and the config
// value otherwise. Subcommands share config keys, so their flags are not
// bound to viper directly.
func flagOrConfigBool(cmd *cobra.Command, flagName, key string) bool {
	if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
		value, err := cmd.Flags().GetBool(flagName)
		if err == nil {
			return value
		}
	}

	return viper.GetBool(key)
}

func flagOrConfigInt(cmd *cobra.Command, flagName, key string) int {
	if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
		value, err := cmd.Flags().GetInt(flagName)
		if err == nil {
			return value
		}
	}

	return viper.GetInt(key)
}

func flagOrConfigDuration(cmd *cobra.Command, flagName, key string) time.Duration {
	if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
		value, err := cmd.Flags().GetDuration(flagName)
		if err == nil {
			return value
		}
	}

	return viper.GetDuration(key)
}
