//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llehouerou/deck/internal/media"
)

func TestFindAlbumArt(t *testing.T) {
	// Create temp directory with a cover file
	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(coverPath, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}

	trackPath := filepath.Join(dir, "track.mp3")

	got := FindAlbumArt(trackPath)
	if got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, coverPath)
	}
}

func TestFindAlbumArt_NotFound(t *testing.T) {
	dir := t.TempDir()
	trackPath := filepath.Join(dir, "track.mp3")

	got := FindAlbumArt(trackPath)
	if got != "" {
		t.Errorf("FindAlbumArt() = %q, want empty string", got)
	}
}

func TestFindAlbumArt_Priority(t *testing.T) {
	dir := t.TempDir()

	// Create folder.jpg (lower priority)
	folderPath := filepath.Join(dir, "folder.jpg")
	if err := os.WriteFile(folderPath, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Create cover.jpg (higher priority)
	coverPath := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(coverPath, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}

	trackPath := filepath.Join(dir, "track.mp3")

	got := FindAlbumArt(trackPath)
	if got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q (higher priority)", got, coverPath)
	}
}

func TestArtURL(t *testing.T) {
	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(coverPath, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		item media.Item
		want string
	}{
		{"own artwork", media.Item{URI: filepath.Join(dir, "a.mp3"), Artwork: "/art/a.jpg"}, "file:///art/a.jpg"},
		{"remote artwork", media.Item{URI: "https://x/a.mp3", Artwork: "https://x/a.jpg"}, "https://x/a.jpg"},
		{"found next to file", media.Item{URI: filepath.Join(dir, "a.mp3")}, "file://" + coverPath},
		{"stream without artwork", media.Item{URI: "https://x/a.mp3"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artURL(tt.item); got != tt.want {
				t.Errorf("artURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
