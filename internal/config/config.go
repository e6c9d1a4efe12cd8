package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Source workbooks.
	InputFiles   []string // file paths or glob patterns
	InputSheet   string   // empty means the first sheet
	HeaderRow    int
	LabelRow     int // -1 when the workbook has no label row
	DropColumns  []string
	FirstDataRow int
	CacheSize    int // parsed workbooks kept between scheduled runs

	Threshold float64

	// Sinks.
	OutputDir      string
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RunInterval     time.Duration // 0 runs the pipeline once
	LoadAttempts    int
	ReportHistory   int // reports kept per source for the query API
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	headerRow, err := parseInt("HEADER_ROW", 0, 0)
	if err != nil {
		return nil, err
	}
	labelRow, err := parseInt("LABEL_ROW", -1, -1)
	if err != nil {
		return nil, err
	}
	firstDataRow, err := parseInt("FIRST_DATA_ROW", 0, 0)
	if err != nil {
		return nil, err
	}
	loadAttempts, err := parseInt("LOAD_ATTEMPTS", 3, 1)
	if err != nil {
		return nil, err
	}

	reportHistory, err := parseInt("REPORT_HISTORY", 1, 1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("WORKBOOK_CACHE_SIZE", 16, 0)
	if err != nil {
		return nil, err
	}

	threshold, err := parseThreshold()
	if err != nil {
		return nil, err
	}

	runInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_INTERVAL", "0s"))
	if err != nil || runInterval < 0 {
		return nil, errors.New("invalid RUN_INTERVAL")
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid KAFKA_ENABLED")
		}
	}

	cfg := &Config{
		InputFiles:   splitList(sharedcfg.EnvOrDefault("INPUT_FILES", "data/*.xlsx")),
		InputSheet:   os.Getenv("INPUT_SHEET"),
		HeaderRow:    headerRow,
		LabelRow:     labelRow,
		DropColumns:  splitList(sharedcfg.EnvOrDefault("DROP_COLUMNS", "Rok")),
		FirstDataRow: firstDataRow,
		CacheSize:    cacheSize,
		Threshold:    threshold,

		OutputDir:      os.Getenv("OUTPUT_DIR"),
		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "pm25-summaries"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RunInterval:     runInterval,
		LoadAttempts:    loadAttempts,
		ReportHistory:   reportHistory,
	}

	if len(cfg.InputFiles) == 0 {
		return nil, errors.New("INPUT_FILES is required")
	}
	if cfg.LabelRow >= 0 && cfg.LabelRow == cfg.HeaderRow {
		return nil, errors.New("LABEL_ROW must differ from HEADER_ROW")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseInt(key string, def, minValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < minValue {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minValue)
	}
	return n, nil
}

func parseThreshold() (float64, error) {
	s := sharedcfg.EnvOrDefault("THRESHOLD", "15")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("invalid THRESHOLD: must be a finite number")
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
