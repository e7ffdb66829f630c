package remote

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llehouerou/deck/internal/playback"
	"github.com/llehouerou/deck/internal/playlist"
)

// Handler handles remote control requests.
type Handler struct {
	service playback.Service
}

// NewHandler creates a new handler instance
func NewHandler(service playback.Service) *Handler {
	return &Handler{service: service}
}

// SetupRoutes registers the remote control routes on group.
func SetupRoutes(group *gin.RouterGroup, service playback.Service) {
	h := NewHandler(service)

	group.GET("/state", h.State)
	group.GET("/queue", h.Queue)
	group.GET("/tracks", h.Tracks)

	group.POST("/play", h.command(service.Play))
	group.POST("/pause", h.command(service.Pause))
	group.POST("/toggle", h.command(service.TogglePlayback))
	group.POST("/next", h.command(service.SkipToNext))
	group.POST("/previous", h.command(service.SkipToPrevious))
	group.POST("/stop", h.command(service.Stop))
	group.POST("/abloop/start", h.command(service.SetABLoopStart))
	group.POST("/abloop/clear", h.command(service.ClearABLoop))
	group.POST("/abloop/end", h.ABLoopEnd)
	group.POST("/retry", h.Retry)

	group.POST("/seek", h.Seek)
	group.POST("/volume", h.Volume)
	group.POST("/speed", h.Speed)
	group.POST("/repeat", h.Repeat)
	group.POST("/shuffle", h.Shuffle)
	group.POST("/sleep", h.Sleep)
	group.POST("/jump", h.Jump)
	group.POST("/subtitle", h.Subtitle)
}

// command wraps a parameterless engine operation.
func (h *Handler) command(op func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		op()
		h.respond(c)
	}
}

func (h *Handler) respond(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse(h.service))
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}

// State handles GET /state
func (h *Handler) State(c *gin.Context) {
	h.respond(c)
}

// Queue handles GET /queue
func (h *Handler) Queue(c *gin.Context) {
	items := h.service.Queue()
	resp := QueueResponse{
		Items: make([]ItemResponse, 0, len(items)),
		Index: h.service.State().CurrentIndex,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, itemResponse(it))
	}
	c.JSON(http.StatusOK, resp)
}

// Tracks handles GET /tracks
func (h *Handler) Tracks(c *gin.Context) {
	c.JSON(http.StatusOK, tracksResponse(h.service.Tracks(), h.service.Chapters()))
}

// Seek handles POST /seek?ms= (absolute) or /seek?delta_ms= (relative).
func (h *Handler) Seek(c *gin.Context) {
	if s := c.Query("delta_ms"); s != "" {
		delta, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid_delta", "delta_ms must be an integer")
			return
		}
		h.service.SeekBy(time.Duration(delta) * time.Millisecond)
		h.respond(c)
		return
	}
	ms, err := strconv.ParseInt(c.Query("ms"), 10, 64)
	if err != nil {
		badRequest(c, "invalid_position", "ms must be an integer")
		return
	}
	h.service.SeekTo(time.Duration(ms) * time.Millisecond)
	h.respond(c)
}

// Volume handles POST /volume?level=
func (h *Handler) Volume(c *gin.Context) {
	level, err := strconv.ParseFloat(c.Query("level"), 64)
	if err != nil {
		badRequest(c, "invalid_level", "level must be a number between 0 and 1")
		return
	}
	h.service.SetVolume(level)
	h.respond(c)
}

// Speed handles POST /speed?value=
func (h *Handler) Speed(c *gin.Context) {
	speed, err := strconv.ParseFloat(c.Query("value"), 64)
	if err != nil {
		badRequest(c, "invalid_speed", "value must be a number")
		return
	}
	if err := h.service.SetPlaybackSpeed(speed); err != nil {
		badRequest(c, "invalid_speed", err.Error())
		return
	}
	h.respond(c)
}

// Repeat handles POST /repeat?mode=off|all|one. Without a mode the
// repeat mode is cycled.
func (h *Handler) Repeat(c *gin.Context) {
	s := c.Query("mode")
	if s == "" {
		h.service.CycleRepeatMode()
		h.respond(c)
		return
	}
	mode, ok := playlist.ParseRepeatMode(s)
	if !ok {
		badRequest(c, "invalid_mode", "mode must be off, all or one")
		return
	}
	h.service.SetRepeatMode(mode)
	h.respond(c)
}

// Shuffle handles POST /shuffle?enabled=. Without a value shuffle is
// toggled.
func (h *Handler) Shuffle(c *gin.Context) {
	s := c.Query("enabled")
	if s == "" {
		h.service.ToggleShuffle()
		h.respond(c)
		return
	}
	enabled, err := strconv.ParseBool(s)
	if err != nil {
		badRequest(c, "invalid_enabled", "enabled must be true or false")
		return
	}
	h.service.SetShuffle(enabled)
	h.respond(c)
}

// Sleep handles POST /sleep?minutes=. Zero cancels the timer.
func (h *Handler) Sleep(c *gin.Context) {
	minutes, err := strconv.ParseFloat(c.Query("minutes"), 64)
	if err != nil || minutes < 0 {
		badRequest(c, "invalid_minutes", "minutes must be a non-negative number")
		return
	}
	h.service.SetSleepTimer(time.Duration(minutes * float64(time.Minute)))
	h.respond(c)
}

// ABLoopEnd handles POST /abloop/end
func (h *Handler) ABLoopEnd(c *gin.Context) {
	if !h.service.SetABLoopEnd() {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "abloop_rejected",
			Message: "set a start point before the current position first",
		})
		return
	}
	h.respond(c)
}

// Retry handles POST /retry
func (h *Handler) Retry(c *gin.Context) {
	if !h.service.RetryPlayback() {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "retry_unavailable",
			Message: "no failed item to retry",
		})
		return
	}
	h.respond(c)
}

// Jump handles POST /jump?index=
func (h *Handler) Jump(c *gin.Context) {
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil {
		badRequest(c, "invalid_index", "index must be an integer")
		return
	}
	if err := h.service.JumpTo(index); err != nil {
		if errors.Is(err, playlist.ErrInvalidIndex) {
			badRequest(c, "invalid_index", err.Error())
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "jump_failed", Message: err.Error()})
		return
	}
	h.respond(c)
}

// Subtitle handles POST /subtitle?id=. An empty id turns subtitles off.
func (h *Handler) Subtitle(c *gin.Context) {
	if err := h.service.SelectSubtitleTrack(c.Query("id")); err != nil {
		if errors.Is(err, playback.ErrUnknownTrack) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown_track", Message: err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "select_failed", Message: err.Error()})
		return
	}
	h.respond(c)
}
