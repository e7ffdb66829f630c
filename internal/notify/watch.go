package notify

import (
	"context"
	"strings"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playback"
)

// trackTimeout is how long a now-playing notification stays up, in ms.
const trackTimeout = 5000

// Watch notifies for the current item, then whenever an item starts
// loading or playback fails, until ctx is done or the engine closes. Each
// notification replaces the previous one.
func Watch(ctx context.Context, n Notifier, e playback.Service) {
	sub := e.Subscribe()
	defer e.Unsubscribe(sub)
	var last uint32

	send := func(notif Notification) {
		notif.ReplacesID = last
		id, err := n.Notify(notif)
		if err != nil {
			logger.Log.Debug().Err(err).Msg("notification failed")
			return
		}
		last = id
	}

	if item, ok := e.CurrentItem(); ok {
		send(trackNotification(item))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.TrackChanged:
			if ev.Current != nil {
				send(trackNotification(*ev.Current))
			}
		case ev := <-sub.StateChanged:
			if ev.Current.Phase == playback.PhaseError && ev.Previous.Phase != playback.PhaseError {
				send(errorNotification(e, ev.Current))
			}
		}
	}
}

func trackNotification(item media.Item) Notification {
	var parts []string
	for _, s := range []string{item.Artist, item.Album} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Notification{
		Title:   item.DisplayTitle(),
		Body:    strings.Join(parts, " - "),
		Icon:    iconFor(item),
		Timeout: trackTimeout,
		Urgency: UrgencyLow,
	}
}

func errorNotification(e playback.Service, st playback.PlaybackState) Notification {
	title := "Playback failed"
	if item, ok := e.CurrentItem(); ok {
		title = "Cannot play " + item.DisplayTitle()
	}
	body := ""
	if st.Err != nil {
		body = st.Err.Error()
	}
	return Notification{
		Title:   title,
		Body:    body,
		Icon:    "dialog-error",
		Timeout: -1,
		Urgency: UrgencyCritical,
	}
}
