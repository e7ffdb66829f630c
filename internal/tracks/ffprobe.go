package tracks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
)

const ffprobeTimeout = 30 * time.Second

var (
	ErrFFprobeNotFound = errors.New("ffprobe not found in PATH")
	ErrInvalidFile     = errors.New("invalid or corrupted media file")
	ErrTimeout         = errors.New("ffprobe execution timed out")
)

// ChapterProber reads chapter markers straight from a media file.
type ChapterProber interface {
	Chapters(ctx context.Context, path string) ([]media.Chapter, error)
}

// FFprobe reads chapters with the ffprobe binary.
type FFprobe struct {
	Path string // defaults to "ffprobe" on PATH
}

type ffprobeChapters struct {
	Chapters []struct {
		ID        int64  `json:"id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Tags      struct {
			Title string `json:"title"`
		} `json:"tags"`
	} `json:"chapters"`
}

func (f FFprobe) binary() (string, error) {
	name := f.Path
	if name == "" {
		name = "ffprobe"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", ErrFFprobeNotFound
	}
	return path, nil
}

// Chapters runs ffprobe -show_chapters on path.
func (f FFprobe) Chapters(ctx context.Context, path string) ([]media.Chapter, error) {
	bin, err := f.binary()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, ffprobeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_chapters",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Log.Debug().
				Str("path", path).
				Str("stderr", string(exitErr.Stderr)).
				Msg("ffprobe failed")
			return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
		}
		return nil, fmt.Errorf("run ffprobe: %w", err)
	}
	return parseFFprobeChapters(output)
}

func parseFFprobeChapters(output []byte) ([]media.Chapter, error) {
	var result ffprobeChapters
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	chapters := make([]media.Chapter, 0, len(result.Chapters))
	for i, c := range result.Chapters {
		start, err := parseSeconds(c.StartTime)
		if err != nil {
			return nil, fmt.Errorf("chapter %d start: %w", c.ID, err)
		}
		end, err := parseSeconds(c.EndTime)
		if err != nil {
			return nil, fmt.Errorf("chapter %d end: %w", c.ID, err)
		}
		title := c.Tags.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		chapters = append(chapters, media.Chapter{
			ID:    strconv.FormatInt(c.ID, 10),
			Title: title,
			Start: start,
			End:   end,
		})
	}
	return chapters, nil
}

func parseSeconds(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
