package media

import (
	"path/filepath"
	"strings"
)

// Supported file extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtWAV  = ".wav"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtM4B  = ".m4b"
	ExtOPUS = ".opus"
	ExtMP4  = ".mp4"
	ExtMKV  = ".mkv"
	ExtWEBM = ".webm"
	ExtAVI  = ".avi"
	ExtMOV  = ".mov"
)

var audioExts = map[string]bool{
	ExtMP3: true, ExtFLAC: true, ExtWAV: true, ExtOGG: true,
	ExtM4A: true, ExtM4B: true, ExtOPUS: true,
}

var videoExts = map[string]bool{
	ExtMP4: true, ExtMKV: true, ExtWEBM: true, ExtAVI: true, ExtMOV: true,
}

// KindOf returns the media kind for a path and whether it is playable at all.
func KindOf(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExts[ext]:
		return KindVideo, true
	case audioExts[ext]:
		return KindAudio, true
	default:
		return KindAudio, false
	}
}

// IsPlayable reports whether path has a supported audio or video extension.
func IsPlayable(path string) bool {
	_, ok := KindOf(path)
	return ok
}
