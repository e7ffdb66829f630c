package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Sends never
// block the engine: events are dropped when a buffer is full.
type Subscription struct {
	StateChanged  <-chan StateChange
	TrackChanged  <-chan TrackChange
	QueueChanged  <-chan QueueChange
	TracksChanged <-chan TracksChange
	Completed     <-chan Completed
	Error         <-chan ErrorEvent
	Done          <-chan struct{}

	// Internal write channels
	stateCh     chan StateChange
	trackCh     chan TrackChange
	queueCh     chan QueueChange
	tracksCh    chan TracksChange
	completedCh chan Completed
	errorCh     chan ErrorEvent
	doneCh      chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:     make(chan StateChange, eventBufferSize),
		trackCh:     make(chan TrackChange, eventBufferSize),
		queueCh:     make(chan QueueChange, eventBufferSize),
		tracksCh:    make(chan TracksChange, eventBufferSize),
		completedCh: make(chan Completed, eventBufferSize),
		errorCh:     make(chan ErrorEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.TrackChanged = s.trackCh
	s.QueueChanged = s.queueCh
	s.TracksChanged = s.tracksCh
	s.Completed = s.completedCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
	}
}

func (s *Subscription) sendQueue(e QueueChange) {
	select {
	case s.queueCh <- e:
	default:
	}
}

func (s *Subscription) sendTracks(e TracksChange) {
	select {
	case s.tracksCh <- e:
	default:
	}
}

func (s *Subscription) sendCompleted(e Completed) {
	select {
	case s.completedCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
