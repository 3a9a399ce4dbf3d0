package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	KeySuggestDebounce   = "suggest.debounce"
	KeySuggestDebounceMs = "suggest.debounce-ms" // Deprecated: use KeySuggestDebounce.
	KeySuggestMinChars   = "suggest.min-chars"
	KeySuggestCache      = "suggest.cache"
	KeySuggestMaxResults = "suggest.max-results"
	KeySuggestMatch      = "suggest.match"
	KeySuggestFreshFor   = "suggest.fresh-for"
	KeySuggestStaleFor   = "suggest.stale-for"
	KeySuggestPageSize   = "suggest.page-size"
	KeySuggestMaxPages   = "suggest.max-pages"

	KeyMaxExpressions = "filters.max-expressions"
	KeyDatabasePath   = "database.path"
	KeySchemaPath     = "schema.path"
	KeyDebug          = "debug"
	KeyTheme          = "ui.theme"
	KeyHelpStyle      = "ui.help-style"
)

const (
	// DirName is the per-user and per-project configuration directory.
	DirName = ".filterbar"

	DefaultDebounce   = 150 * time.Millisecond
	DefaultMaxResults = 20
	DefaultFreshFor   = 30 * time.Second
	DefaultStaleFor   = 5 * time.Minute
	DefaultPageSize   = 50
	DefaultMaxPages   = 10

	envPrefix = "FB"
)

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error

	// userConfigPath is the user config file Initialize settled on; SaveSetting
	// falls back to it when there is no project config.
	userConfigPath string
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration fetches a duration configuration value, initializing on demand.
func GetDuration(key string) time.Duration {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set updates a configuration key at runtime, initializing on demand.
func Set(key string, value any) error {
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	configInst.Set(key, value)
	return nil
}

// SuggestSettings is the typed view of the suggest.* keys.
type SuggestSettings struct {
	Debounce   time.Duration
	MinChars   int
	Cache      bool
	MaxResults int
	Match      string
	FreshFor   time.Duration
	StaleFor   time.Duration
	PageSize   int
	MaxPages   int
}

// Suggest assembles the autocomplete settings. Non-positive sizes fall back
// to the defaults.
func Suggest() SuggestSettings {
	s := SuggestSettings{
		Debounce:   GetDuration(KeySuggestDebounce),
		MinChars:   GetInt(KeySuggestMinChars),
		Cache:      GetBool(KeySuggestCache),
		MaxResults: GetInt(KeySuggestMaxResults),
		Match:      strings.ToLower(strings.TrimSpace(GetString(KeySuggestMatch))),
		FreshFor:   GetDuration(KeySuggestFreshFor),
		StaleFor:   GetDuration(KeySuggestStaleFor),
		PageSize:   GetInt(KeySuggestPageSize),
		MaxPages:   GetInt(KeySuggestMaxPages),
	}
	if s.Debounce < 0 {
		s.Debounce = 0
	}
	if s.MinChars < 0 {
		s.MinChars = 0
	}
	if s.MaxResults <= 0 {
		s.MaxResults = DefaultMaxResults
	}
	if s.Match == "" {
		s.Match = "substring"
	}
	if s.FreshFor <= 0 {
		s.FreshFor = DefaultFreshFor
	}
	if s.StaleFor < s.FreshFor {
		s.StaleFor = s.FreshFor
	}
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.MaxPages <= 0 {
		s.MaxPages = DefaultMaxPages
	}
	return s
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userPath := strings.TrimSpace(settings.userConfigPath)
	if userPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userPath); err != nil {
		return fmt.Errorf("load user config: %w", err)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return fmt.Errorf("load project config: %w", err)
	}
	applyLegacyDebounceConfig(v)

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	userConfigPath = userPath
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: config loader intentionally reads user and project config files
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// UserConfigPath returns the user config file for dir, or the default
// location when dir is empty.
func UserConfigPath(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return defaultUserConfigPath()
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName, "config.yaml")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySuggestDebounce, DefaultDebounce)
	v.SetDefault(KeySuggestMinChars, 0)
	v.SetDefault(KeySuggestCache, true)
	v.SetDefault(KeySuggestMaxResults, DefaultMaxResults)
	v.SetDefault(KeySuggestMatch, "substring")
	v.SetDefault(KeySuggestFreshFor, DefaultFreshFor)
	v.SetDefault(KeySuggestStaleFor, DefaultStaleFor)
	v.SetDefault(KeySuggestPageSize, DefaultPageSize)
	v.SetDefault(KeySuggestMaxPages, DefaultMaxPages)
	v.SetDefault(KeyMaxExpressions, 0)
	v.SetDefault(KeyDatabasePath, "")
	v.SetDefault(KeySchemaPath, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyTheme, "tokyonight")
	v.SetDefault(KeyHelpStyle, "dark")
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
	userConfigPath = ""
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "config.yaml")))
	return reset
}

// applyLegacyDebounceConfig maps the old millisecond integer onto
// suggest.debounce unless the duration key was set explicitly.
func applyLegacyDebounceConfig(v *viper.Viper) {
	if v == nil || hasExplicitDebounce(v) {
		return
	}
	if v.IsSet(KeySuggestDebounceMs) {
		v.Set(KeySuggestDebounce, millisToDuration(v.GetInt(KeySuggestDebounceMs)))
	}
}

func hasExplicitDebounce(v *viper.Viper) bool {
	if v.InConfig(KeySuggestDebounce) {
		return true
	}
	_, ok := os.LookupEnv(envKey(KeySuggestDebounce))
	return ok
}

func envKey(key string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return strings.ToUpper(envPrefix) + "_" + strings.ToUpper(replacer.Replace(key))
}

func millisToDuration(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// SaveSetting persists one key to the appropriate config file.
// If a project config (.filterbar/config.yaml) exists, it updates that file.
// Otherwise, it updates the user config. The user config directory is
// auto-created if needed, but project config directories are never
// auto-created.
func SaveSetting(key string, value any) error {
	targetPath, err := findWritableConfigPath()
	if err != nil {
		return fmt.Errorf("find config path: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(targetPath)
	_ = v.ReadInConfig() // missing file is fine

	v.Set(key, value)

	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(targetPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := Set(key, value); err != nil {
		return err
	}
	return nil
}

// findWritableConfigPath returns the project config path if one exists,
// otherwise the user config path.
func findWritableConfigPath() (string, error) {
	wd, err := os.Getwd()
	if err == nil {
		projectPath, err := findProjectConfig(wd)
		if err == nil && projectPath != "" {
			return projectPath, nil
		}
	}

	configMu.RLock()
	path := userConfigPath
	configMu.RUnlock()
	if path != "" {
		return path, nil
	}
	return defaultUserConfigPath()
}
