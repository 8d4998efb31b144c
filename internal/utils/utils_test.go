package utils

import (
	"strings"
	"testing"
	"time"
)

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache(10)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	c.Set("tags", []string{"lunch"}, time.Minute)
	if c.Get("tags") == nil {
		t.Error("Expected cached value")
	}

	c.Set("stale", 1, -time.Second)
	if c.Get("stale") != nil {
		t.Error("Expected expired value to be dropped")
	}

	c.Delete("tags")
	if c.Get("tags") != nil {
		t.Error("Expected deleted value to be gone")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("s3cret-pass", hash) {
		t.Error("Expected password to match its hash")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**Boil** water\n\n![pot](https://example.com/pot.png)<script>alert(1)</script>")

	if !strings.Contains(out, "<strong>Boil</strong>") {
		t.Errorf("Expected bold text, got %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("Expected script to be stripped, got %s", out)
	}
	if !strings.Contains(out, `loading="lazy"`) {
		t.Errorf("Expected lazy image, got %s", out)
	}
	if RenderMarkdown("") != "" {
		t.Error("Expected empty output for empty text")
	}
}

func TestQueryHelpers(t *testing.T) {
	if id, ok := StringToUint("42"); !ok || id != 42 {
		t.Errorf("Expected 42, got %d %v", id, ok)
	}
	for _, bad := range []string{"", "0", "-1", "abc"} {
		if _, ok := StringToUint(bad); ok {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
	if !IsTruthy("1") || !IsTruthy("True") || IsTruthy("0") || IsTruthy("") {
		t.Error("IsTruthy returned unexpected results")
	}
}
