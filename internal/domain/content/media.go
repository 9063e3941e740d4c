package content

import "strings"

type MediaKind string

const (
	MediaImage       MediaKind = "image"
	MediaVideo       MediaKind = "video"
	MediaPhoto       MediaKind = "photo"
	MediaAnimatedGIF MediaKind = "animated_gif"
)

// Media is one attachment. Path is either relative to the static media root or a
// fully qualified URL; for videos Path is the poster and VideoURL the playback source.
type Media struct {
	Type     MediaKind `json:"type"`
	Path     string    `json:"path"`
	Remote   bool      `json:"remote,omitempty"`
	VideoURL string    `json:"video_url,omitempty"`
}

func (m Media) IsRemote() bool {
	if m.Remote {
		return true
	}
	p := strings.ToLower(strings.TrimSpace(m.Path))
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

func (m Media) IsVideo() bool {
	return m.Type == MediaVideo || m.Type == MediaAnimatedGIF
}

// PlaybackURL is the source a player should load: the explicit video URL when
// present, otherwise the path itself.
func (m Media) PlaybackURL() string {
	if m.IsVideo() && strings.TrimSpace(m.VideoURL) != "" {
		return m.VideoURL
	}
	return m.Path
}

// NormalizeKind folds the richer tweet media kinds onto image|video.
func NormalizeKind(kind string) MediaKind {
	switch MediaKind(strings.ToLower(strings.TrimSpace(kind))) {
	case MediaVideo:
		return MediaVideo
	case MediaAnimatedGIF:
		return MediaAnimatedGIF
	case MediaPhoto, MediaImage, "":
		return MediaImage
	default:
		return MediaImage
	}
}
