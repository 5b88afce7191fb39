package prompter

import "testing"

func TestParseSpeedPreset(t *testing.T) {
	tests := map[string]SpeedPreset{
		"slow":     SpeedSlow,
		" Medium ": SpeedMedium,
		"normal":   SpeedMedium,
		"FAST":     SpeedFast,
	}
	for raw, want := range tests {
		got, err := ParseSpeedPreset(raw)
		if err != nil || got != want {
			t.Errorf("ParseSpeedPreset(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := ParseSpeedPreset("ludicrous"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestSpeedPresetLabels(t *testing.T) {
	if SpeedFast.Label() != "Fast" {
		t.Fatalf("Label = %q, want Fast", SpeedFast.Label())
	}
	if SpeedPreset(0).Valid() {
		t.Fatal("zero preset should be invalid")
	}
	if SpeedPreset(0).Next() != SpeedSlow {
		t.Fatal("unset preset should cycle to slow")
	}
	if DefaultSpeeds()[SpeedMedium] != 52 {
		t.Fatalf("medium = %v, want 52", DefaultSpeeds()[SpeedMedium])
	}
}
