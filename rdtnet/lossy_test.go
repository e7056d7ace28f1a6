package rdtnet

import "testing"

func TestLossyNetworkDropsEverythingAtProbabilityOne(t *testing.T) {
	var delivered int
	net := NewLossyNetwork(LossyConfig{DropProbability: 1, Seed: 1}, func(buf []byte) { delivered++ })
	for i := 0; i < 10; i++ {
		net.Send([]byte("x"))
	}
	if delivered != 0 {
		t.Fatalf("delivered = %d, want 0 with DropProbability=1", delivered)
	}
}

func TestLossyNetworkDeliversEverythingWithNoImpairments(t *testing.T) {
	var delivered int
	net := NewLossyNetwork(LossyConfig{Seed: 1}, func(buf []byte) { delivered++ })
	for i := 0; i < 10; i++ {
		net.Send([]byte("x"))
	}
	if delivered != 10 {
		t.Fatalf("delivered = %d, want 10 with no impairments", delivered)
	}
}

func TestLossyNetworkDuplicatesAtProbabilityOne(t *testing.T) {
	var delivered int
	net := NewLossyNetwork(LossyConfig{DuplicateProbability: 1, Seed: 1}, func(buf []byte) { delivered++ })
	net.Send([]byte("x"))
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2 with DuplicateProbability=1", delivered)
	}
}

func TestLossyNetworkReordersOneDatagram(t *testing.T) {
	var got [][]byte
	net := NewLossyNetwork(LossyConfig{ReorderProbability: 1, Seed: 1}, func(buf []byte) {
		got = append(got, append([]byte(nil), buf...))
	})
	net.Send([]byte("first"))
	if len(got) != 0 {
		t.Fatalf("expected first datagram held back, got %d delivered", len(got))
	}
	net.Send([]byte("second"))
	if len(got) != 2 || string(got[0]) != "second" || string(got[1]) != "first" {
		t.Fatalf("unexpected delivery order: %v", got)
	}
}
