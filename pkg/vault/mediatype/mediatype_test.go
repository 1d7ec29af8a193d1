package mediatype

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Type
	}{
		{"video extension", "video.mp4", Video},
		{"upper case svg", "icon.SVG", Image},
		{"unknown extension", "file.xyz", Unknown},
		{"empty", "", Unknown},
		{"whitespace", "   ", Unknown},
		{"jpeg mime", "image/jpeg", Image},
		{"webm mime", "video/webm", Video},
		{"pdf mime", "application/pdf", Unknown},
		{"remote url", "https://cdn.example.com/a/b/clip.webm?v=2", Video},
		{"local url", "/uploads/other/abc/pic.webp", Image},
		{"images folder hint beats extension", "/uploads/images/abc/blob.bin", Image},
		{"videos folder hint", "https://bucket.example.com/videos/abc/x", Video},
		{"relative storage path", "images/abc/123.gif", Image},
		{"mov", "take.MOV", Video},
		{"ogg", "sound.ogg", Video},
		{"no extension", "README", Unknown},
		{"garbage", "%%%://", Unknown},
		{"filename with hash", "clip#1.mp4", Video},
		{"filename with question mark", "photo?.jpg", Image},
		{"local url with query", "/uploads/other/abc/a.png?v=1", Image},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.input); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if Parse("VIDEO") != Video {
		t.Errorf("expected video")
	}
	if Parse(" image ") != Image {
		t.Errorf("expected image")
	}
	if Parse("audio") != Unknown {
		t.Errorf("expected unknown")
	}
	if !Parse("").IsValid() {
		t.Errorf("parsed value must always be valid")
	}
}
