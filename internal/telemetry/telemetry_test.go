package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown := Setup("osprey-back", "", zap.NewNop())
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
