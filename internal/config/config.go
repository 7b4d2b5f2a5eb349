package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	API           APIConfig
	Content       ContentConfig
	Sync          SyncConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path      string
	LogTiming bool
}

type APIConfig struct {
	Token string
}

type ContentConfig struct {
	BaseURL        string
	RetryAttempts  int
	RetryBaseMS    int
	RetryMaxMS     int
	RequestsPerSec float64
}

type SyncConfig struct {
	MaxPosts            int
	BatchSize           int
	BatchDelayMS        int
	BudgetTotal         int
	BudgetPerPostMin    int
	ReplyWindowHours    int
	ProgressRetentionMS int
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVersion    string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("creatorlens_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("creatorlens_port", 8080)
	v.SetDefault("creatorlens_db_path", "data/default")
	v.SetDefault("creatorlens_db_timing", false)
	v.SetDefault("creatorlens_api_token", "")
	v.SetDefault("content_api_base_url", "https://graph.contentapi.com/v19.0")
	v.SetDefault("content_api_retry_attempts", 3)
	v.SetDefault("content_api_retry_base_ms", 1000)
	v.SetDefault("content_api_retry_max_ms", 30000)
	v.SetDefault("content_api_requests_per_sec", 4.0)
	v.SetDefault("creatorlens_sync_max_posts", 50)
	v.SetDefault("creatorlens_sync_batch_size", 3)
	v.SetDefault("creatorlens_sync_batch_delay_ms", 500)
	v.SetDefault("creatorlens_sync_budget_total", 150)
	v.SetDefault("creatorlens_sync_budget_per_post_min", 2)
	v.SetDefault("creatorlens_sync_reply_window_hours", 168)
	v.SetDefault("creatorlens_sync_progress_retention_ms", 300000)
	v.SetDefault("creatorlens_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "creatorlens")
	v.SetDefault("creatorlens_service_name", "creatorlens")
	v.SetDefault("creatorlens_version", "dev")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("creatorlens_otel_sampling_ratio", 1.0)
	v.SetDefault("creatorlens_otel_metrics_console", false)

	env := resolveEnvironment(v)
	port := v.GetInt("creatorlens_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid CREATORLENS_PORT: %d", port)
	}

	samplingRatio := v.GetFloat64("creatorlens_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	retryAttempts := v.GetInt("content_api_retry_attempts")
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	if retryAttempts > 10 {
		retryAttempts = 10
	}

	retryBase := v.GetInt("content_api_retry_base_ms")
	if retryBase <= 0 {
		retryBase = 1000
	}
	retryMax := v.GetInt("content_api_retry_max_ms")
	if retryMax < retryBase {
		retryMax = retryBase * 30
	}

	requestsPerSec := v.GetFloat64("content_api_requests_per_sec")
	if requestsPerSec <= 0 {
		requestsPerSec = 4.0
	}

	maxPosts := v.GetInt("creatorlens_sync_max_posts")
	if maxPosts <= 0 {
		maxPosts = 50
	}
	if maxPosts > 500 {
		maxPosts = 500
	}

	batchSize := v.GetInt("creatorlens_sync_batch_size")
	if batchSize <= 0 {
		batchSize = 3
	}
	if batchSize > 20 {
		batchSize = 20
	}

	batchDelay := v.GetInt("creatorlens_sync_batch_delay_ms")
	if batchDelay < 0 {
		batchDelay = 500
	}

	budgetTotal := v.GetInt("creatorlens_sync_budget_total")
	if budgetTotal <= 0 {
		budgetTotal = 150
	}

	perPostMin := v.GetInt("creatorlens_sync_budget_per_post_min")
	if perPostMin < 0 {
		perPostMin = 0
	}
	if perPostMin > budgetTotal {
		perPostMin = budgetTotal
	}

	replyWindow := v.GetInt("creatorlens_sync_reply_window_hours")
	if replyWindow <= 0 {
		replyWindow = 168
	}

	retention := v.GetInt("creatorlens_sync_progress_retention_ms")
	if retention <= 0 {
		retention = 300000
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = strings.TrimSpace(v.GetString("creatorlens_service_name"))
	}
	if serviceName == "" {
		serviceName = "creatorlens"
	}

	serviceVersion := strings.TrimSpace(v.GetString("creatorlens_version"))
	if serviceVersion == "" {
		serviceVersion = strings.TrimSpace(v.GetString("otel_service_version"))
	}
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	otlpTraceHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))
	otlpMetricHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))
	metricsConsole := v.GetBool("creatorlens_otel_metrics_console")
	otelEnabled := v.GetBool("creatorlens_otel_enabled") || otlpEndpoint != "" || metricsConsole
	traceHeaders := mergeHeaderMaps(otlpCommonHeaders, otlpTraceHeaders)
	metricHeaders := mergeHeaderMaps(otlpCommonHeaders, otlpMetricHeaders)

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path:      strings.TrimSpace(v.GetString("creatorlens_db_path")),
			LogTiming: v.GetBool("creatorlens_db_timing"),
		},
		API: APIConfig{
			Token: strings.TrimSpace(v.GetString("creatorlens_api_token")),
		},
		Content: ContentConfig{
			BaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString("content_api_base_url")), "/"),
			RetryAttempts:  retryAttempts,
			RetryBaseMS:    retryBase,
			RetryMaxMS:     retryMax,
			RequestsPerSec: requestsPerSec,
		},
		Sync: SyncConfig{
			MaxPosts:            maxPosts,
			BatchSize:           batchSize,
			BatchDelayMS:        batchDelay,
			BudgetTotal:         budgetTotal,
			BudgetPerPostMin:    perPostMin,
			ReplyWindowHours:    replyWindow,
			ProgressRetentionMS: retention,
		},
		Observability: ObservabilityConfig{
			Enabled:           otelEnabled,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  traceHeaders,
			OTLPMetricHeaders: metricHeaders,
			ServiceName:       serviceName,
			ServiceVersion:    serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}

	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = "data/default"
	}
	if !cfg.IsLocalDevelopment() && cfg.API.Token == "" {
		return Config{}, fmt.Errorf("CREATORLENS_API_TOKEN is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.API.Token == "" {
		cfg.API.Token = "creatorlens-local-dev"
	}

	return cfg, nil
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func (c Config) SyncBatchDelay() time.Duration {
	return time.Duration(c.Sync.BatchDelayMS) * time.Millisecond
}

func (c Config) ContentRetryBase() time.Duration {
	return time.Duration(c.Content.RetryBaseMS) * time.Millisecond
}

func (c Config) ContentRetryMax() time.Duration {
	return time.Duration(c.Content.RetryMaxMS) * time.Millisecond
}

func (c Config) ReplyWindow() time.Duration {
	return time.Duration(c.Sync.ReplyWindowHours) * time.Hour
}

func (c Config) ProgressRetention() time.Duration {
	return time.Duration(c.Sync.ProgressRetentionMS) * time.Millisecond
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"creatorlens_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
