package video

import (
	"strings"
	"testing"
)

func TestNormalize_RecognisedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		id   string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"v param after others", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"legacy v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"user upload path", "https://www.youtube.com/u/w/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"fragment", "https://youtu.be/dQw4w9WgXcQ#comments", "dQw4w9WgXcQ"},
		{"leading whitespace", "  https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Normalize(tt.raw)
			if !ref.Valid() {
				t.Fatalf("expected %q to normalise", tt.raw)
			}
			if ref.ID != tt.id {
				t.Errorf("expected id %q, got %q", tt.id, ref.ID)
			}
			want := "https://www.youtube.com/embed/" + tt.id
			if ref.EmbedURL != want {
				t.Errorf("expected embed URL %q, got %q", want, ref.EmbedURL)
			}
			if ref.Raw != tt.raw {
				t.Errorf("expected raw link to be kept, got %q", ref.Raw)
			}
		})
	}
}

func TestNormalize_RejectsUnrecognisedInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"https://youtu.be/short",
		"https://youtu.be/dQw4w9WgXcQx",
		"https://www.youtube.com/watch?v=",
		"https://www.youtube.com/",
		"https://vimeo.com/123456789",
		"not a url at all",
		"https://www.youtube.com/watch?list=PL1234567890",
		"https://youtu.be/dQw4w9WgXcQ ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ\n",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			ref := Normalize(raw)
			if ref.Valid() {
				t.Errorf("expected %q to be rejected, got %q", raw, ref.EmbedURL)
			}
			if ref.ID != "" {
				t.Errorf("expected no id for %q, got %q", raw, ref.ID)
			}
		})
	}
}

func TestExtractID_LastMarkerWins(t *testing.T) {
	id, ok := ExtractID("https://youtu.be/aaaaaaaaaaa?x=1&v=bbbbbbbbbbb")
	if !ok {
		t.Fatal("expected id to be extracted")
	}
	if id != "bbbbbbbbbbb" {
		t.Errorf("expected the last marker to win, got %q", id)
	}
}

func TestEmbedURL_EndsWithID(t *testing.T) {
	got, ok := EmbedURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if !ok {
		t.Fatal("expected embeddable URL")
	}
	if !strings.HasSuffix(got, "/dQw4w9WgXcQ") {
		t.Errorf("expected URL ending in /dQw4w9WgXcQ, got %q", got)
	}

	if got, ok := EmbedURL(""); ok || got != "" {
		t.Errorf("expected no embeddable URL for empty input, got %q", got)
	}
}

func TestExtractID_OnlyElevenCharacterCandidates(t *testing.T) {
	for n := 0; n <= 20; n++ {
		candidate := strings.Repeat("a", n)
		_, ok := ExtractID("https://youtu.be/" + candidate)
		if ok != (n == IDLength) {
			t.Errorf("length %d: expected ok=%v, got %v", n, n == IDLength, ok)
		}
	}
}

func TestWatchAndThumbnailURLs(t *testing.T) {
	if got := WatchURL("dQw4w9WgXcQ"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("unexpected watch URL %q", got)
	}
	if got := ThumbnailURL("dQw4w9WgXcQ"); got != "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("unexpected thumbnail URL %q", got)
	}
}
