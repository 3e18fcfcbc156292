package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/middleware"
)

// InstituteLookup checks that a subscribed institute exists
type InstituteLookup interface {
	GetInstitute(ctx context.Context, id int64) (*models.Institute, error)
}

// Handler upgrades requests to live achievement feeds
type Handler struct {
	hub        *Hub
	institutes InstituteLookup
	upgrader   websocket.Upgrader
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler. Origins are matched exactly, "*" allows any.
func NewHandler(hub *Hub, institutes InstituteLookup, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		institutes: institutes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// HandleConnection godoc
// @Summary Live GTO achievement feed
// @Description Upgrades to a WebSocket streaming achievement events of one institute, or of all institutes when institute_id is omitted. The token may be passed as the token query parameter.
// @Tags gto
// @Security BearerAuth
// @Param institute_id query int false "Institute ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /gto/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	instituteID := AllInstitutes
	if raw := c.Query("institute_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid institute ID").WithField("institute_id")))
			return
		}
		if h.institutes != nil {
			if _, err := h.institutes.GetInstitute(c.Request.Context(), id); err != nil {
				middleware.HandleAPIError(c, err)
				return
			}
		}
		instituteID = id
	}

	var userID int64
	if user, ok := middleware.CurrentUser(c); ok {
		userID = user.ID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Warn().Err(err).Int64("instituteID", instituteID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, userID, instituteID, h.logger)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
