package config

import (
	"testing"
	"time"

	kit "dropwatch/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	dw := New().Prefix("DROPWATCH_")
	if got := dw.key("WORKERS"); got != "DROPWATCH_WORKERS" {
		t.Fatalf("key() = %q", got)
	}
	if got := dw.Prefix("API_").key("PORT"); got != "DROPWATCH_API_PORT" {
		t.Fatalf("nested key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("DWT_")
	t.Setenv("DWT_NAME", "  dropwatch ")
	if got := c.MustString("NAME"); got != "dropwatch" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayHelpers(t *testing.T) {
	c := New().Prefix("DWT_")
	t.Setenv("DWT_WORKERS", "64")
	t.Setenv("DWT_BAD_INT", "x")
	t.Setenv("DWT_RPS", "0.25")
	t.Setenv("DWT_BAD_F", "nope")
	t.Setenv("DWT_API", "true")
	t.Setenv("DWT_BAD_B", "perhaps")
	t.Setenv("DWT_PACING", "550ms")
	t.Setenv("DWT_BAD_D", "soon")

	if got := c.MayString("UNSET", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("WORKERS", 1); got != 64 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("BAD_INT", 9); got != 9 {
		t.Fatalf("MayInt invalid = %d", got)
	}
	if got := c.MayFloat64("RPS", 1); got != 0.25 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if got := c.MayFloat64("BAD_F", 2); got != 2 {
		t.Fatalf("MayFloat64 invalid = %v", got)
	}
	if !c.MayBool("API", false) {
		t.Fatalf("MayBool = false")
	}
	if !c.MayBool("BAD_B", true) {
		t.Fatalf("MayBool invalid should use default")
	}
	if got := c.MayDuration("PACING", time.Second); got != 550*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("BAD_D", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("DWT_")
	t.Setenv("DWT_SELECTOR", "Adaptive")
	if got := c.MayEnum("SELECTOR", "uniform", "uniform", "adaptive"); got != "adaptive" {
		t.Fatalf("MayEnum = %q", got)
	}
	if got := c.MayEnum("UNSET", "uniform", "uniform", "adaptive"); got != "uniform" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("DWT_SELECTOR", "sticky")
	kit.MustPanic(t, func() { _ = c.MayEnum("SELECTOR", "uniform", "uniform", "adaptive") })
}
