package rdtnet

import (
	"testing"
	"time"
)

func TestDemoConfigTranslatesToConnConfig(t *testing.T) {
	cfg := DemoConfig{
		SendWindowBytes: 2048,
		RecvWindowBytes: 4096,
		RTTimeout:       100 * time.Millisecond,
		TickPeriod:      10 * time.Millisecond,
	}
	connCfg := cfg.ConnConfig()
	if connCfg.SendWindow != 2048 {
		t.Fatalf("SendWindow = %d, want 2048", connCfg.SendWindow)
	}
	if connCfg.RecvWindow != 4096 {
		t.Fatalf("RecvWindow = %d, want 4096", connCfg.RecvWindow)
	}
	if connCfg.RTTimeout != 100*time.Millisecond {
		t.Fatalf("RTTimeout = %v, want 100ms", connCfg.RTTimeout)
	}
}

func TestDemoConfigTranslatesToLossyConfig(t *testing.T) {
	cfg := DemoConfig{Lossy: LossyDemoConfig{
		DropProbability:      0.1,
		DuplicateProbability: 0.2,
		Seed:                 7,
	}}
	lossy := cfg.LossyConfig()
	if lossy.DropProbability != 0.1 || lossy.DuplicateProbability != 0.2 || lossy.Seed != 7 {
		t.Fatalf("unexpected lossy config: %+v", lossy)
	}
}
