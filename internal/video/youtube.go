// Package video derives embeddable YouTube references from lecture links.
package video

import "regexp"

const (
	// IDLength is the fixed width of a YouTube video identifier.
	IDLength = 11

	EmbedBaseURL = "https://www.youtube.com/embed"
	watchBaseURL = "https://www.youtube.com/watch?v="
	thumbBaseURL = "https://i.ytimg.com/vi/"
)

// The leading .* is greedy, so the last marker in the link wins.
var youtubeLinkPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|shorts/|watch\?v=|&v=)([^#&?]*).*`)

// Reference is a lecture's video link together with what can be derived
// from it. It is recomputed on every render and never stored.
type Reference struct {
	Raw      string `json:"raw"`
	ID       string `json:"id,omitempty"`
	EmbedURL string `json:"embedUrl,omitempty"`
}

func (r Reference) Valid() bool {
	return r.EmbedURL != ""
}

// Normalize derives a Reference from a user supplied link. Malformed or
// empty input yields a Reference without an embed URL.
func Normalize(raw string) Reference {
	ref := Reference{Raw: raw}
	if id, ok := ExtractID(raw); ok {
		ref.ID = id
		ref.EmbedURL = EmbedBaseURL + "/" + id
	}
	return ref
}

// ExtractID returns the 11 character video identifier found in raw. Input is
// not trimmed: trailing whitespace counts toward the candidate.
func ExtractID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	m := youtubeLinkPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	id := m[2]
	if len(id) != IDLength {
		return "", false
	}
	return id, true
}

// EmbedURL returns the iframe-loadable form of raw.
func EmbedURL(raw string) (string, bool) {
	ref := Normalize(raw)
	return ref.EmbedURL, ref.Valid()
}

func WatchURL(id string) string {
	return watchBaseURL + id
}

func ThumbnailURL(id string) string {
	return thumbBaseURL + id + "/hqdefault.jpg"
}
