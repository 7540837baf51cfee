package translation

import "testing"

func TestUntranslatedFallback(t *testing.T) {
	Configure(t.TempDir(), "")

	if got := Language(); got != "en" {
		t.Errorf("expected en, got %q", got)
	}
	if got := Translate("Hello %s", "bob"); got != "Hello bob" {
		t.Errorf("unexpected translation %q", got)
	}

	tests := map[int]string{
		1: "1 alert",
		2: "2 alerts",
	}
	for n, expected := range tests {
		if got := TranslateN("%d alert", "%d alerts", n, n); got != expected {
			t.Errorf("n=%d: expected %q, got %q", n, expected, got)
		}
	}
}
