//go:build otel

package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/nextlevelbuilder/kitedash/internal/config"
	"github.com/nextlevelbuilder/kitedash/internal/tracing/otelexport"
)

// initOTel installs an OTLP-exporting global TracerProvider when telemetry
// is enabled. Only compiled with -tags otel.
func initOTel(ctx context.Context, cfg *config.Config) func() {
	noop := func() {}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint == "" {
		slog.Debug("OTel export available but not enabled (set telemetry.enabled + telemetry.endpoint)")
		return noop
	}

	exp, err := otelexport.New(ctx, otelexport.Config{
		Endpoint:       cfg.Telemetry.Endpoint,
		Protocol:       cfg.Telemetry.Protocol,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Headers:        cfg.Telemetry.Headers,
	})
	if err != nil {
		slog.Warn("otel.exporter_failed", "error", err)
		return noop
	}

	otel.SetTracerProvider(exp.Provider())
	slog.Info("otel.enabled",
		"endpoint", cfg.Telemetry.Endpoint,
		"protocol", cfg.Telemetry.Protocol,
	)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := exp.Shutdown(shutdownCtx); err != nil {
			slog.Warn("otel.shutdown_failed", "error", err)
		}
	}
}
