//go:build !otel

package cmd

import (
	"context"

	"github.com/nextlevelbuilder/kitedash/internal/config"
)

// initOTel is a no-op when built without the "otel" tag.
// Build with `go build -tags otel` to enable OpenTelemetry export.
func initOTel(_ context.Context, _ *config.Config) func() {
	return func() {}
}
