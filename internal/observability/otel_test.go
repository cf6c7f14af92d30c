package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/mkarlsen/go-error-boundaries/internal/config"
)

func TestSetupTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.OTELConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected a no-op shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupTracing_ExporterErrorPropagates(t *testing.T) {
	prev := newOTLPExporterFn
	t.Cleanup(func() { newOTLPExporterFn = prev })
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("no collector")
	}

	_, err := SetupTracing(context.Background(), config.OTELConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		Insecure:    true,
		ServiceName: "test",
		SampleRatio: 1.0,
	}, "test")
	if err == nil || err.Error() != "no collector" {
		t.Fatalf("err = %v; want exporter error", err)
	}
}

func TestSetupTracing_ResourceErrorPropagates(t *testing.T) {
	prevExp := newOTLPExporterFn
	prevRes := newServiceResourceFn
	t.Cleanup(func() {
		newOTLPExporterFn = prevExp
		newServiceResourceFn = prevRes
	})
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return &otlptrace.Exporter{}, nil
	}
	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("bad resource")
	}

	_, err := SetupTracing(context.Background(), config.OTELConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		Insecure:    true,
		ServiceName: "test",
		SampleRatio: 1.0,
	}, "test")
	if err == nil || err.Error() != "bad resource" {
		t.Fatalf("err = %v; want resource error", err)
	}
}
