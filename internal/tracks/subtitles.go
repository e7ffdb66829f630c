package tracks

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
)

// DefaultSubtitleExtensions are the sidecar subtitle formats recognized
// next to a media file.
var DefaultSubtitleExtensions = []string{".srt", ".vtt", ".ass", ".ssa", ".sub"}

// ExternalIDPrefix marks track IDs of subtitles found on disk rather than
// reported by the renderer.
const ExternalIDPrefix = "ext:"

// DiscoverSubtitles scans the directory of itemPath for subtitle files
// sharing its base name. A suffix between the base name and the extension
// becomes the language tag ("movie.en.srt" is "en"). Unreadable
// directories yield no tracks.
func DiscoverSubtitles(fs afero.Fs, itemPath string, exts []string) []media.Track {
	if itemPath == "" {
		return nil
	}
	dir := filepath.Dir(itemPath)
	base := strings.TrimSuffix(filepath.Base(itemPath), filepath.Ext(itemPath))

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		logger.Log.Debug().Err(err).Str("dir", dir).Msg("subtitle discovery skipped")
		return nil
	}

	var found []media.Track
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lang, ok := matchSubtitle(name, base, exts)
		if !ok {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		found = append(found, media.Track{
			ID:       ExternalIDPrefix + name,
			Type:     media.TrackSubtitle,
			Title:    name,
			Language: lang,
			Codec:    strings.TrimPrefix(ext, "."),
			External: true,
			Path:     filepath.Join(dir, name),
		})
	}
	return found
}

// matchSubtitle reports whether name is a subtitle sidecar for base and
// returns its language tag.
func matchSubtitle(name, base string, exts []string) (string, bool) {
	ext := filepath.Ext(name)
	if !hasExtension(ext, exts) {
		return "", false
	}
	stem := strings.TrimSuffix(name, ext)
	if !strings.HasPrefix(stem, base) {
		return "", false
	}
	suffix := stem[len(base):]
	if suffix == "" {
		return media.UnknownLanguage, true
	}
	// "movie2.srt" belongs to "movie2", not "movie"
	if !strings.ContainsRune("._- ", rune(suffix[0])) {
		return "", false
	}
	lang := strings.Trim(suffix, "._- ")
	if lang == "" {
		return media.UnknownLanguage, true
	}
	return lang, true
}

// IsSubtitle reports whether path has one of the given subtitle extensions.
func IsSubtitle(path string, exts []string) bool {
	return hasExtension(filepath.Ext(path), exts)
}

func hasExtension(ext string, exts []string) bool {
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
