package cache

import (
	"testing"
	"time"
)

func TestGetMissingKey(t *testing.T) {
	c := New[string, int](time.Minute, 0)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestSetAndGet(t *testing.T) {
	c := New[string, int](time.Minute, 0)
	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get = (%d, %v), want (1, true)", v, ok)
	}
}

func TestEntryExpires(t *testing.T) {
	c := New[string, int](10*time.Millisecond, 0)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy removal on Get, len = %d", c.Len())
	}
}

func TestSetRefreshesEntry(t *testing.T) {
	c := New[string, int](50*time.Millisecond, 0)
	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)
	c.Set("a", 2)
	time.Sleep(30 * time.Millisecond)
	v, ok := c.Get("a")
	if !ok || v != 2 {
		t.Errorf("Get after refresh = (%d, %v), want (2, true)", v, ok)
	}
}

func TestCapacityEviction(t *testing.T) {
	c := New[int, int](time.Minute, 2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2 after eviction", c.Len())
	}
	if _, ok := c.Get(3); !ok {
		t.Error("newest entry must survive eviction")
	}
}

func TestUpdateAtCapacityDoesNotEvict(t *testing.T) {
	c := New[int, int](time.Minute, 2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(1, 10)
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
	v, _ := c.Get(1)
	if v != 10 {
		t.Errorf("Get(1) = %d, want 10", v)
	}
	if _, ok := c.Get(2); !ok {
		t.Error("untouched entry must survive an in-place update")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string, int](time.Minute, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate()
	if c.Len() != 0 {
		t.Errorf("len after Invalidate = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Invalidate")
	}
}
