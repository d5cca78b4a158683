package ratelimit

import "testing"

func TestAllowBurstThenBlock(t *testing.T) {
	l := New()
	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow("client-a", 3, 0.001) {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed %d requests from a capacity-3 bucket, want 3", allowed)
	}
}

func TestAllowKeysIndependent(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Allow("client-a", 3, 0.001)
	}
	if l.Allow("client-a", 3, 0.001) {
		t.Fatal("client-a should be exhausted")
	}
	if !l.Allow("client-b", 3, 0.001) {
		t.Fatal("client-b should have a fresh bucket")
	}
}
