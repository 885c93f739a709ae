package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache()

	c.Set("key", "value", time.Minute)

	val, found := c.Get("key")
	if !found {
		t.Fatal("Expected key to be found")
	}
	if val != "value" {
		t.Errorf("Expected value, got %v", val)
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache()

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache()

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("key"); found {
		t.Error("Expected expired entry to be treated as a miss")
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache()

	c.Set("key", "value", time.Minute)
	c.Delete("key")

	if _, found := c.Get("key"); found {
		t.Error("Expected deleted key to be gone")
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := NewCache()

	c.Set("key", "first", time.Minute)
	c.Set("key", "second", time.Minute)

	val, _ := c.Get("key")
	if val != "second" {
		t.Errorf("Expected second, got %v", val)
	}
}
