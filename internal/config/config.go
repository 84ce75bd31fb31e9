package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration. It is built once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	Language    LanguageConfig    `yaml:"language"`
	History     HistoryConfig     `yaml:"history"`
	Capture     CaptureConfig     `yaml:"capture"`
	Speech      SpeechConfig      `yaml:"speech"`
	Translation TranslationConfig `yaml:"translation"`
	Status      StatusConfig      `yaml:"status"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LanguageConfig fixes the language pair for the run
type LanguageConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// HistoryConfig locates the conversation log
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// CaptureConfig selects the capture device. When ReplayDir is set, WAV files
// from that directory are played instead of running the recorder command.
type CaptureConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	SampleRate int      `yaml:"sample_rate"`
	ReplayDir  string   `yaml:"replay_dir"`
}

// SpeechConfig contains speech-to-text engine configuration
type SpeechConfig struct {
	Backend         string `yaml:"backend"` // whisper, google or mock
	Model           string `yaml:"model"`
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	CredentialsFile string `yaml:"credentials_file"`
	Timeout         int    `yaml:"timeout"` // seconds
}

// TranslationConfig contains machine-translation engine configuration
type TranslationConfig struct {
	Backend string `yaml:"backend"` // gemini, openai or mock
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// StatusConfig contains the optional status server configuration
type StatusConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Address     string `yaml:"address"`
	TokenSecret string `yaml:"token_secret"`
	TokenTTL    int    `yaml:"token_ttl"` // hours
}

// LoggingConfig contains diagnostic logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Speech and translation backends
const (
	SpeechWhisper = "whisper"
	SpeechGoogle  = "google"
	SpeechMock    = "mock"

	TranslationGemini = "gemini"
	TranslationOpenAI = "openai"
	TranslationMock   = "mock"
)

var languageCode = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Language: LanguageConfig{Source: "ru", Target: "en"},
		History:  HistoryConfig{Path: "log.txt"},
		Capture: CaptureConfig{
			Command:    "rec",
			SampleRate: 16000,
		},
		Speech: SpeechConfig{
			Backend: SpeechWhisper,
			Timeout: 60,
		},
		Translation: TranslationConfig{
			Backend: TranslationGemini,
			Timeout: 30,
		},
		Status: StatusConfig{
			Address:  "127.0.0.1:8080",
			TokenTTL: 24,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load builds the configuration from, in increasing precedence: defaults, the
// YAML file named by -config or JURU_CONFIG, the .env file, the environment
// and command-line flags.
func Load(args []string) (Config, error) {
	fset := flag.NewFlagSet("juru", flag.ContinueOnError)
	configPath := fset.String("config", "", "path to a YAML configuration file")
	envPath := fset.String("env", ".env", "path to a .env file")
	source := fset.String("source", "", "source language code")
	target := fset.String("target", "", "target language code")
	logPath := fset.String("log", "", "conversation log destination")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(*envPath); err != nil {
		return Config{}, err
	}

	cfg := Default()

	path := *configPath
	if path == "" {
		path = os.Getenv("JURU_CONFIG")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Language.Source = *source
		case "target":
			cfg.Language.Target = *target
		case "log":
			cfg.History.Path = *logPath
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables that are not already set in the environment
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto c
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
		return nil
	}

	str("JURU_SOURCE_LANGUAGE", &c.Language.Source)
	str("JURU_TARGET_LANGUAGE", &c.Language.Target)
	str("JURU_LOG_PATH", &c.History.Path)

	str("JURU_CAPTURE_COMMAND", &c.Capture.Command)
	if v, ok := lookup("JURU_CAPTURE_ARGS"); ok && v != "" {
		c.Capture.Args = strings.Fields(v)
	}
	if err := num("JURU_CAPTURE_SAMPLE_RATE", &c.Capture.SampleRate); err != nil {
		return err
	}
	str("JURU_REPLAY_DIR", &c.Capture.ReplayDir)

	str("JURU_SPEECH_BACKEND", &c.Speech.Backend)
	str("JURU_SPEECH_MODEL", &c.Speech.Model)
	str("JURU_SPEECH_BASE_URL", &c.Speech.BaseURL)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Speech.CredentialsFile)
	if err := num("JURU_SPEECH_TIMEOUT", &c.Speech.Timeout); err != nil {
		return err
	}

	str("JURU_TRANSLATION_BACKEND", &c.Translation.Backend)
	str("JURU_TRANSLATION_MODEL", &c.Translation.Model)
	str("JURU_TRANSLATION_BASE_URL", &c.Translation.BaseURL)
	if err := num("JURU_TRANSLATION_TIMEOUT", &c.Translation.Timeout); err != nil {
		return err
	}

	// Engine keys come from the vendor's usual variable unless set explicitly.
	if c.Speech.APIKey == "" && c.Speech.Backend == SpeechWhisper {
		str("OPENAI_API_KEY", &c.Speech.APIKey)
	}
	switch c.Translation.Backend {
	case TranslationGemini:
		if c.Translation.APIKey == "" {
			str("GEMINI_API_KEY", &c.Translation.APIKey)
		}
	case TranslationOpenAI:
		if c.Translation.APIKey == "" {
			str("OPENAI_API_KEY", &c.Translation.APIKey)
		}
	}

	if v, ok := lookup("JURU_STATUS_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JURU_STATUS_ENABLED must be a boolean, got %q", v)
		}
		c.Status.Enabled = enabled
	}
	str("JURU_STATUS_ADDRESS", &c.Status.Address)
	str("JURU_STATUS_SECRET", &c.Status.TokenSecret)
	if err := num("JURU_STATUS_TOKEN_TTL", &c.Status.TokenTTL); err != nil {
		return err
	}

	str("JURU_LOG_LEVEL", &c.Logging.Level)
	str("JURU_LOG_FORMAT", &c.Logging.Format)
	str("JURU_LOG_OUTPUT", &c.Logging.Output)

	return nil
}

// Validate performs validation of every section
func (c Config) Validate() error {
	if err := c.Language.Validate(); err != nil {
		return fmt.Errorf("language config: %w", err)
	}

	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}

	if err := c.Translation.Validate(); err != nil {
		return fmt.Errorf("translation config: %w", err)
	}

	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("status config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates language configuration
func (l LanguageConfig) Validate() error {
	if !languageCode.MatchString(l.Source) {
		return fmt.Errorf("source must be a language code such as 'ru', got '%s'", l.Source)
	}

	if !languageCode.MatchString(l.Target) {
		return fmt.Errorf("target must be a language code such as 'en', got '%s'", l.Target)
	}

	if strings.EqualFold(l.Source, l.Target) {
		return fmt.Errorf("source and target must differ, both are '%s'", l.Source)
	}

	return nil
}

// Validate validates history configuration
func (h HistoryConfig) Validate() error {
	if strings.TrimSpace(h.Path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Validate validates capture configuration
func (a CaptureConfig) Validate() error {
	if a.ReplayDir != "" {
		return nil
	}

	if a.Command == "" {
		return fmt.Errorf("command cannot be empty unless replay_dir is set")
	}

	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000 Hz, got %d", a.SampleRate)
	}

	return nil
}

// RecorderArgs returns the configured recorder arguments, or the SoX rec
// arguments for one 16-bit mono utterance at SampleRate delimited by silence.
func (a CaptureConfig) RecorderArgs() []string {
	if len(a.Args) > 0 {
		return a.Args
	}
	return []string{
		"-q", "-t", "wav", "-c", "1", "-b", "16", "-r", strconv.Itoa(a.SampleRate), "-",
		"silence", "1", "0.1", "2%", "1", "1.5", "2%",
	}
}

// Validate validates speech configuration
func (s SpeechConfig) Validate() error {
	switch s.Backend {
	case SpeechWhisper:
		if s.APIKey == "" {
			return fmt.Errorf("api_key (or OPENAI_API_KEY) is required for the whisper backend")
		}
	case SpeechGoogle, SpeechMock:
	default:
		return fmt.Errorf("backend must be one of [whisper, google, mock], got '%s'", s.Backend)
	}

	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}

	return nil
}

// Validate validates translation configuration
func (t TranslationConfig) Validate() error {
	switch t.Backend {
	case TranslationGemini:
		if t.APIKey == "" {
			return fmt.Errorf("api_key (or GEMINI_API_KEY) is required for the gemini backend")
		}
	case TranslationOpenAI:
		if t.APIKey == "" {
			return fmt.Errorf("api_key (or OPENAI_API_KEY) is required for the openai backend")
		}
	case TranslationMock:
	default:
		return fmt.Errorf("backend must be one of [gemini, openai, mock], got '%s'", t.Backend)
	}

	if t.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", t.Timeout)
	}

	return nil
}

// Validate validates status server configuration
func (s StatusConfig) Validate() error {
	if !s.Enabled {
		return nil
	}

	if s.Address == "" {
		return fmt.Errorf("address cannot be empty when the status server is enabled")
	}

	if s.TokenTTL < 1 {
		return fmt.Errorf("token_ttl must be at least 1 hour, got %d", s.TokenTTL)
	}

	return nil
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'console', got '%s'", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	return nil
}

// Models used when a backend is selected without one
var defaultModels = map[string]string{
	SpeechWhisper:     "whisper-1",
	TranslationGemini: "gemini-2.0-flash",
	TranslationOpenAI: "gpt-4o-mini",
}

// GetModel returns the configured model, or the default for the backend
func (s SpeechConfig) GetModel() string {
	if s.Model != "" {
		return s.Model
	}
	return defaultModels[s.Backend]
}

// GetModel returns the configured model, or the default for the backend
func (t TranslationConfig) GetModel() string {
	if t.Model != "" {
		return t.Model
	}
	return defaultModels[t.Backend]
}

// GetTimeoutDuration returns the speech timeout as a time.Duration
func (s SpeechConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetTimeoutDuration returns the translation timeout as a time.Duration
func (t TranslationConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// GetTokenTTLDuration returns the viewer token lifetime as a time.Duration
func (s StatusConfig) GetTokenTTLDuration() time.Duration {
	return time.Duration(s.TokenTTL) * time.Hour
}
