package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing punctuation", input: "Stop Motion Button!", want: "stop-motion-button"},
		{name: "simple two words", input: "Glow Card", want: "glow-card"},
		{name: "already a slug", input: "burger-menu-button", want: "burger-menu-button"},
		{name: "runs collapse", input: "Text -- Scramble   Effect", want: "text-scramble-effect"},
		{name: "leading symbols", input: "  ***Marquee", want: "marquee"},
		{name: "slashes become hyphens", input: "Frontend/Backend", want: "frontend-backend"},
		{name: "digits kept", input: "Grid 3D v2", want: "grid-3d-v2"},
		{name: "accents dropped", input: "Café Menu", want: "caf-menu"},
		{name: "only symbols", input: "!!!", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !Valid("glow-card") {
		t.Error("expected glow-card to be valid")
	}
	if Valid("Glow Card") {
		t.Error("expected title-cased input to be invalid")
	}
	if Valid("") {
		t.Error("expected empty slug to be invalid")
	}
}
