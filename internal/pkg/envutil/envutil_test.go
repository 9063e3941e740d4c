package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	if got := Duration("X_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("Duration=%v", got)
	}
	t.Setenv("X_DUR", "45")
	if got := Duration("X_DUR", time.Second); got != 45*time.Second {
		t.Fatalf("Duration(bare seconds)=%v", got)
	}
	t.Setenv("X_DUR", "nope")
	if got := Duration("X_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration(invalid)=%v", got)
	}
}

func TestListAndBool(t *testing.T) {
	t.Setenv("X_LIST", " a, ,b ")
	got := List("X_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List=%v", got)
	}
	t.Setenv("X_BOOL", "off")
	if Bool("X_BOOL", true) {
		t.Fatalf("Bool(off) should be false")
	}
	if Int("X_MISSING_INT", 7) != 7 {
		t.Fatalf("Int default not used")
	}
}
