package cache

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/curator/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.com/a")
	b := CacheKey("https://example.com/b")

	if !strings.HasPrefix(a, "curator:v1:") {
		t.Errorf("CacheKey() = %s, missing prefix", a)
	}
	if a == b {
		t.Error("different URLs must produce different keys")
	}
	if a != CacheKey("https://example.com/a") {
		t.Error("CacheKey must be stable")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("https://example.com/a")

	if err := c.Set(key, []byte("1"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := c.Get(key); !ok || string(got) != "1" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	if len(matches) != 1 || strings.Contains(filepath.Base(matches[0]), ":") {
		t.Errorf("unexpected cache files: %v", matches)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesFromBack(t *testing.T) {
	front := NewMemoryCache(time.Minute, time.Minute)
	back := NewDiskCache(t.TempDir(), time.Hour)
	_ = back.Set("k", []byte("v"), 0)

	c := NewLayeredCache(front, back)
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}
	if _, ok := front.Get("k"); !ok {
		t.Error("expected value promoted to front layer")
	}
}

func TestLayeredCache_SetWritesBoth(t *testing.T) {
	front := NewMemoryCache(time.Minute, time.Minute)
	back := NewMemoryCache(time.Minute, time.Minute)
	c := NewLayeredCache(front, back)

	_ = c.Set("k", []byte("v"), 0)
	if _, ok := back.Get("k"); !ok {
		t.Error("expected back layer to hold value")
	}

	_ = c.Clear()
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestNew(t *testing.T) {
	c, err := New(model.CacheConfig{Enabled: false})
	if err != nil || c != nil {
		t.Errorf("disabled cache: got %v, %v", c, err)
	}

	c, err = New(model.CacheConfig{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected memory cache, got %T", c)
	}

	c, err = New(model.CacheConfig{Enabled: true, DiskDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := c.(*LayeredCache); !ok {
		t.Errorf("expected layered cache, got %T", c)
	}
}
