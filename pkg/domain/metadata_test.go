package domain

import (
	"testing"
	"time"
)

func TestMetadata_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMetadata("abc", now, time.Minute)

	if m.Expired(now.Add(59 * time.Second)) {
		t.Error("session should still be alive before TTL")
	}
	if !m.Expired(now.Add(time.Minute)) {
		t.Error("session should expire exactly at TTL")
	}
	if got := m.ExpiresAt(); !got.Equal(now.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want %v", got, now.Add(time.Minute))
	}
}

func TestMetadata_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	m := NewMetadata("abc", now, 0)

	if m.Expired(now.Add(1000 * time.Hour)) {
		t.Error("zero TTL must never expire")
	}
	if !m.ExpiresAt().IsZero() {
		t.Error("zero TTL must report zero ExpiresAt")
	}
}
