package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted in ANNOTATE_BACKEND.
const (
	BackendNone   = "none"
	BackendONNX   = "onnx"
	BackendVision = "vision"
	BackendHTTP   = "http"
)

// Config holds all annotate configuration.
type Config struct {
	Engine   EngineConfig
	Pipeline PipelineConfig
	Output   OutputConfig
	Log      LogConfig
}

// EngineConfig selects and configures the classification backend.
type EngineConfig struct {
	Backend    string // "none", "onnx", "vision", "http"
	ModelPath  string
	LabelsPath string
	ORTLib     string
	Device     string // "auto", "cpu"
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
}

// PipelineConfig holds annotation run settings.
type PipelineConfig struct {
	BatchSize   int
	TextLabels  []string
	ImageLabels []string
	CleanText   bool
}

// OutputConfig holds report destination settings.
type OutputConfig struct {
	Pretty    bool
	ReportLog string // NDJSON file reports are appended to; empty disables
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string // "text", "json"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	modelPath := getenv("ANNOTATE_MODEL_PATH", "models/classifier.onnx")
	return Config{
		Engine: EngineConfig{
			Backend:    strings.ToLower(getenv("ANNOTATE_BACKEND", BackendNone)),
			ModelPath:  modelPath,
			LabelsPath: getenv("ANNOTATE_LABELS_PATH", "models/labels.txt"),
			ORTLib:     getenv("ANNOTATE_ORT_LIB", filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")),
			Device:     strings.ToLower(getenv("ANNOTATE_DEVICE", "auto")),
			Endpoint:   os.Getenv("ANNOTATE_ENDPOINT"),
			APIKey:     os.Getenv("ANNOTATE_API_KEY"),
			Timeout:    getenvDuration("ANNOTATE_TIMEOUT", 60*time.Second),
		},
		Pipeline: PipelineConfig{
			BatchSize:   getenvInt("ANNOTATE_BATCH_SIZE", 8),
			TextLabels:  getenvList("ANNOTATE_TEXT_LABELS", []string{"general"}),
			ImageLabels: getenvList("ANNOTATE_IMAGE_LABELS", []string{"unlabeled"}),
			CleanText:   getenvBool("ANNOTATE_CLEAN_TEXT", true),
		},
		Output: OutputConfig{
			Pretty:    getenvBool("ANNOTATE_PRETTY", false),
			ReportLog: os.Getenv("ANNOTATE_REPORT_LOG"),
		},
		Log: LogConfig{
			Level:  getenv("ANNOTATE_LOG_LEVEL", "info"),
			Format: getenv("ANNOTATE_LOG_FORMAT", "text"),
		},
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Engine.Backend {
	case BackendNone, BackendVision:
	case BackendONNX:
		for _, p := range []struct{ name, path string }{
			{"model", c.Engine.ModelPath},
			{"labels", c.Engine.LabelsPath},
		} {
			if _, err := os.Stat(p.path); err != nil {
				errs = append(errs, fmt.Errorf("%s file not found: %s", p.name, p.path))
			}
		}
	case BackendHTTP:
		if c.Engine.Endpoint == "" {
			errs = append(errs, errors.New("ANNOTATE_ENDPOINT is required for the http backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want none, onnx, vision, or http)", c.Engine.Backend))
	}

	if c.Engine.Device != "auto" && c.Engine.Device != "cpu" {
		errs = append(errs, fmt.Errorf("device must be auto or cpu, got %q", c.Engine.Device))
	}
	if c.Engine.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be >= 0, got %v", c.Engine.Timeout))
	}
	if c.Pipeline.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be > 0, got %d", c.Pipeline.BatchSize))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// getenvList splits a comma-separated value, dropping empty entries.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
