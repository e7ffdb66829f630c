package surface

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/spf13/afero"

	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/player"
	"github.com/llehouerou/deck/internal/tracks"
)

// playing starts an engine on a mock renderer with one ready item. Must
// run inside a synctest bubble.
func playing(t *testing.T, kind media.Kind) (*playback.Engine, *player.Mock) {
	t.Helper()
	m := player.NewMock()
	e := playback.New(m, playback.WithResolver(tracks.NewResolver(tracks.WithFs(afero.NewMemMapFs()))))
	e.PlayItem(media.Item{ID: "a", URI: "/media/a", Kind: kind, Duration: time.Hour})
	m.Emit(player.Update{Duration: time.Hour, Playing: true})
	synctest.Wait()
	return e, m
}

func TestNew_ReturnsSurfaceForKind(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()

		a := New(e, media.KindAudio, Options{})
		defer a.Close()
		if _, ok := a.(*Audio); !ok || a.Kind() != media.KindAudio {
			t.Errorf("New(audio) = %T", a)
		}
		v := New(e, media.KindVideo, Options{})
		defer v.Close()
		if _, ok := v.(*Video); !ok || v.Kind() != media.KindVideo {
			t.Errorf("New(video) = %T", v)
		}
	})
}

func TestAutoHide_HidesAfterTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()
		s := NewAudio(e, Options{})
		defer s.Close()

		s.Interact()
		time.Sleep(DefaultAutoHide - time.Millisecond)
		synctest.Wait()
		if !s.ControlsVisible() {
			t.Fatal("controls hidden before timeout")
		}
		time.Sleep(time.Millisecond)
		synctest.Wait()
		if s.ControlsVisible() {
			t.Error("controls still visible after timeout")
		}
	})
}

func TestAutoHide_RearmedOnInteraction(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()
		s := NewAudio(e, Options{})
		defer s.Close()

		s.Interact()
		time.Sleep(2 * time.Second)
		s.Interact()
		time.Sleep(2 * time.Second)
		synctest.Wait()
		if !s.ControlsVisible() {
			t.Fatal("first timer was not cancelled by the second interaction")
		}
		time.Sleep(time.Second)
		synctest.Wait()
		if s.ControlsVisible() {
			t.Error("controls still visible 3s after last interaction")
		}
	})
}

func TestAutoHide_SuppressedWhilePaused(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()
		s := NewAudio(e, Options{})
		defer s.Close()

		e.Pause()
		synctest.Wait()
		s.Interact()
		time.Sleep(10 * time.Second)
		synctest.Wait()
		if !s.ControlsVisible() {
			t.Error("controls hidden while paused")
		}
	})
}

func TestAutoHide_PauseShowsAndResumeArms(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()
		s := NewAudio(e, Options{AutoHide: time.Second})
		defer s.Close()

		s.Interact()
		time.Sleep(time.Second)
		synctest.Wait()
		if s.ControlsVisible() {
			t.Fatal("controls not hidden")
		}

		e.Pause()
		synctest.Wait()
		if !s.ControlsVisible() {
			t.Fatal("pause did not show controls")
		}

		e.Play()
		synctest.Wait()
		time.Sleep(time.Second)
		synctest.Wait()
		if s.ControlsVisible() {
			t.Error("resume did not arm auto-hide")
		}
	})
}

func TestDoubleTap_SeeksRelative(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, m := playing(t, media.KindVideo)
		defer e.Close()
		s := NewVideo(e, Options{})
		defer s.Close()

		m.Emit(player.Update{Position: time.Minute, Playing: true})
		synctest.Wait()

		s.DoubleTap(SideRight)
		s.DoubleTap(SideLeft)
		s.DoubleTap(SideLeft)
		got := m.SeekCalls()
		want := []time.Duration{70 * time.Second, time.Minute, 50 * time.Second}
		if len(got) != len(want) {
			t.Fatalf("SeekCalls() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("seek %d = %v, want %v", i, got[i], want[i])
			}
		}
	})
}

func TestVolumeGesture_ClampsThroughEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()
		s := NewAudio(e, Options{VolumeStep: 0.25})
		defer s.Close()

		s.VolumeUp()
		if v := e.State().Volume; v != 1 {
			t.Errorf("Volume = %v, want 1", v)
		}
		s.VolumeDown()
		s.VolumeDown()
		if v := e.State().Volume; v != 0.5 {
			t.Errorf("Volume = %v, want 0.5", v)
		}
		s.VolumeGesture(-3)
		if v := e.State().Volume; v != 0 {
			t.Errorf("Volume = %v, want 0", v)
		}
	})
}

func TestVideo_LocalState(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindVideo)
		defer e.Close()
		v := NewVideo(e, Options{BrightnessStep: 0.5})
		defer v.Close()

		v.BrightnessUp()
		if b := v.Brightness(); b != 1 {
			t.Errorf("Brightness = %v, want 1", b)
		}
		v.BrightnessDown()
		v.BrightnessDown()
		v.BrightnessDown()
		if b := v.Brightness(); b != 0 {
			t.Errorf("Brightness = %v, want 0", b)
		}
		if e.State().Volume != 1 {
			t.Error("brightness leaked into the engine volume")
		}

		v.ToggleFullscreen()
		v.SetOrientation(OrientationLandscape)
		p, ok := v.Preview()
		if !ok {
			t.Fatal("Preview() not ok")
		}
		vp, isVideo := p.(VideoPreview)
		if !isVideo {
			t.Fatalf("Preview() = %T, want VideoPreview", p)
		}
		if !vp.Fullscreen || vp.Orientation != OrientationLandscape || vp.Current().ID != "a" {
			t.Errorf("VideoPreview = %+v", vp)
		}
	})
}

func TestVideo_ToggleSubtitles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		m.SetTracks([]media.Track{{ID: "s1", Type: media.TrackSubtitle, Language: "en"}})
		e := playback.New(m, playback.WithResolver(tracks.NewResolver(tracks.WithFs(afero.NewMemMapFs()))))
		defer e.Close()
		e.PlayItem(media.Item{ID: "v", URI: "/media/v.mkv", Kind: media.KindVideo})
		m.Emit(player.Update{Duration: time.Hour, Playing: true})
		synctest.Wait()

		v := NewVideo(e, Options{})
		defer v.Close()

		if err := v.ToggleSubtitles(); err != nil {
			t.Fatalf("ToggleSubtitles() error = %v", err)
		}
		if sel, ok := e.Tracks().Selected(media.TrackSubtitle); !ok || sel.ID != "s1" {
			t.Errorf("subtitle not selected: %+v", sel)
		}
		if err := v.ToggleSubtitles(); err != nil {
			t.Fatalf("ToggleSubtitles() error = %v", err)
		}
		if _, ok := e.Tracks().Selected(media.TrackSubtitle); ok {
			t.Error("subtitle still selected after second toggle")
		}
	})
}

func TestAudio_Preview(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := player.NewMock()
		e := playback.New(m)
		defer e.Close()
		s := NewAudio(e, Options{})
		defer s.Close()

		if _, ok := s.Preview(); ok {
			t.Error("Preview() ok with empty queue")
		}
		e.PlayItem(media.Item{ID: "song", URI: "/media/song.flac", Artwork: "/media/cover.jpg"})
		p, ok := s.Preview()
		ap, isAudio := p.(AudioPreview)
		if !ok || !isAudio {
			t.Fatalf("Preview() = %T, %v", p, ok)
		}
		if ap.Artwork != "/media/cover.jpg" || !ap.Playback().IsPlaying {
			t.Errorf("AudioPreview = %+v", ap)
		}
	})
}

func TestClose_StopsTimers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		e, _ := playing(t, media.KindAudio)
		defer e.Close()
		s := NewAudio(e, Options{})

		s.Interact()
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		select {
		case <-s.sub.Done:
		default:
			t.Error("engine subscription still attached after Close")
		}
		time.Sleep(DefaultAutoHide)
		synctest.Wait()
		if !s.ControlsVisible() {
			t.Error("timer fired after Close")
		}
		s.Interact()
		if err := s.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})
}
