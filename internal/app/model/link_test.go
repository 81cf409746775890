package model

import (
	"testing"
	"time"
)

func TestLinkExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (&Link{}).Expired(now) {
		t.Fatal("link without expiry must never expire")
	}
	if !(&Link{ExpiresAt: &past}).Expired(now) {
		t.Fatal("past expiry must read as expired")
	}
	if (&Link{ExpiresAt: &future}).Expired(now) {
		t.Fatal("future expiry must not read as expired")
	}
}

func TestLinkLimitReached(t *testing.T) {
	limit := int64(3)

	if (&Link{ClickCount: 1000}).LimitReached() {
		t.Fatal("unlimited link must never report exhaustion")
	}
	if (&Link{ClickLimit: &limit, ClickCount: 2}).LimitReached() {
		t.Fatal("below limit must not report exhaustion")
	}
	if !(&Link{ClickLimit: &limit, ClickCount: 3}).LimitReached() {
		t.Fatal("at limit must report exhaustion")
	}
	// Exhaustion is independent of the active flag.
	if !(&Link{ClickLimit: &limit, ClickCount: 3, Active: true}).LimitReached() {
		t.Fatal("active flag must not mask exhaustion")
	}
}
