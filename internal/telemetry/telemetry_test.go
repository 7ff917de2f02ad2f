package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	l, err := NewLogger("debug", "production")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug enabled")
	}
	l, err = NewLogger("loud", "development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) || !l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info fallback")
	}
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveRequest("GET", "/v1/programs", "200", 0.01)
	m.LoginAttempt("failure")
	m.SaveConflict("program")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`test_http_requests_total{method="GET",route="/v1/programs",status="200"} 1`,
		`test_login_attempts_total{result="failure"} 1`,
		`test_save_conflicts_total{entity="program"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in metrics output", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", "200", 1)
	m.LoginAttempt("success")
	m.SaveConflict("program")
	m.StoreRetry()
	m.WebhookDelivery("ok")
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "projector", "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if Tracer() == nil {
		t.Fatalf("expected tracer")
	}
}
