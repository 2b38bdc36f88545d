package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/app"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

const (
	envHTTPAddr                    = "SHOP_HTTP_ADDR"
	envGRPCAddr                    = "SHOP_GRPC_ADDR"
	envMetricsAddr                 = "SHOP_METRICS_ADDR"
	envLogLevel                    = "SHOP_LOG_LEVEL"
	envLogJSON                     = "SHOP_LOG_JSON"
	envKafkaBrokers                = "KAFKA_BROKERS"
	envKafkaTopic                  = "SHOP_KAFKA_TOPIC"
	envOutboxPollInterval          = "SHOP_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "SHOP_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "SHOP_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "SHOP_OUTBOX_RETRY_DELAY"
	envOutboxMaxAge                = "SHOP_OUTBOX_MAX_AGE"
	envIdempotencyTTL              = "SHOP_IDEMPOTENCY_TTL"
	envIdempotencyCleanupInterval  = "SHOP_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "SHOP_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	envCORSOrigins                 = "SHOP_CORS_ORIGINS"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(level string, jsonOutput bool) error {
	if jsonOutput {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return err
	}
	log.SetLevel(parsed)
	return nil
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не применяются и возвращаются как предупреждения.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, raw, err))
	}
	get := func(key string) (string, bool) {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return "", false
		}
		return raw, true
	}

	setString := func(key string, dst *string) {
		if raw, ok := get(key); ok {
			*dst = strings.TrimSpace(raw)
		}
	}
	setInt := func(key string, dst *int) {
		raw, ok := get(key)
		if !ok {
			return
		}
		value, err := parseInt(raw, func(v int) bool { return v > 0 }, "must be > 0")
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = value
	}
	setDuration := func(key string, dst *time.Duration, allowZero bool) {
		raw, ok := get(key)
		if !ok {
			return
		}
		valid, reason := func(v time.Duration) bool { return v > 0 }, "must be > 0"
		if allowZero {
			valid, reason = func(v time.Duration) bool { return v >= 0 }, "must be >= 0"
		}
		value, err := parseDuration(raw, valid, reason)
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = value
	}

	setString(envHTTPAddr, &cfg.HTTPAddr)
	setString(envGRPCAddr, &cfg.GRPCAddr)
	setString(envMetricsAddr, &cfg.MetricsAddr)
	setString(envLogLevel, &cfg.LogLevel)
	setString(envKafkaTopic, &cfg.KafkaTopic)

	if raw, ok := get(envKafkaBrokers); ok {
		cfg.KafkaBrokers = parseList(raw)
	}
	if raw, ok := get(envCORSOrigins); ok {
		cfg.CORSOrigins = parseList(raw)
	}

	setDuration(envOutboxPollInterval, &cfg.OutboxPollInterval, false)
	setInt(envOutboxBatchSize, &cfg.OutboxBatchSize)
	setInt(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts)
	setDuration(envOutboxRetryDelay, &cfg.OutboxRetryDelay, true)
	setDuration(envOutboxMaxAge, &cfg.OutboxMaxAge, false)
	setDuration(envIdempotencyTTL, &cfg.IdempotencyTTL, false)
	setDuration(envIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval, false)
	setInt(envIdempotencyCleanupBatchSize, &cfg.IdempotencyCleanupBatchSize)

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, reason string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(reason)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, reason string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(reason)
	}
	return value, nil
}

// parseList разбирает список через запятую, пропуская пустые элементы.
func parseList(raw string) []string {
	var result []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func main() {
	cfg, warnings := readConfigFromEnv(os.LookupEnv)

	jsonOutput := false
	if raw, ok := os.LookupEnv(envLogJSON); ok {
		value, err := parseBool(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", envLogJSON, raw, err))
		}
		jsonOutput = value
	}
	if err := setupLogger(cfg.LogLevel, jsonOutput); err != nil {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", envLogLevel, cfg.LogLevel, err))
	}
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"grpc_addr":    cfg.GRPCAddr,
		"metrics_addr": cfg.MetricsAddr,
		"kafka":        cfg.EventsEnabled(),
		"version":      version.String(),
	}).Info("запускаем shop-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("shop-service остановлен")
}
