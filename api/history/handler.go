package history

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nihalshetty-boop/listri/internal/history"
	"github.com/nihalshetty-boop/listri/internal/presence"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HTTPHandler serves the history and presence read API.
type HTTPHandler struct {
	history  *history.Service
	presence presence.Tracker
	logger   logger.Logger
}

func NewHTTPHandler(svc *history.Service, tracker presence.Tracker, logg logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		history:  svc,
		presence: tracker,
		logger:   logg,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/chat")
	{
		api.GET("/room/:chatRoomId", h.GetMessagesByRoom)
		api.GET("/conversation/:senderId/:receiverId", h.GetMessagesByUsers)
		api.GET("/listing/:listingId", h.GetMessagesByListing)
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:chatRoomId/members", h.ListRoomMembers)
		api.GET("/users", h.ListActiveUsers)
	}

	r.GET("/health", h.HealthCheck)
}

func (h *HTTPHandler) GetMessagesByRoom(c *gin.Context) {
	chatRoomID := c.Param("chatRoomId")

	messages, err := h.history.RoomMessages(c.Request.Context(), chatRoomID)
	if err != nil {
		h.logger.Errorf("failed to fetch messages for room %s: %v", chatRoomID, err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: messages})
}

func (h *HTTPHandler) GetMessagesByUsers(c *gin.Context) {
	senderID := c.Param("senderId")
	receiverID := c.Param("receiverId")

	messages, err := h.history.Conversation(c.Request.Context(), senderID, receiverID)
	if err != nil {
		h.logger.Errorf("failed to fetch conversation %s->%s: %v", senderID, receiverID, err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: messages})
}

func (h *HTTPHandler) GetMessagesByListing(c *gin.Context) {
	listingID := c.Param("listingId")

	messages, err := h.history.ListingMessages(c.Request.Context(), listingID)
	if err != nil {
		h.logger.Errorf("failed to fetch messages for listing %s: %v", listingID, err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: messages})
}

func (h *HTTPHandler) ListRooms(c *gin.Context) {
	rooms, err := h.presence.Rooms(c.Request.Context())
	if err != nil {
		h.logger.Errorf("failed to list rooms: %v", err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: "failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: rooms})
}

func (h *HTTPHandler) ListRoomMembers(c *gin.Context) {
	chatRoomID := c.Param("chatRoomId")

	members, err := h.presence.RoomMembers(c.Request.Context(), chatRoomID)
	if err != nil {
		h.logger.Errorf("failed to list members of %s: %v", chatRoomID, err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: "failed to list members"})
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: members})
}

func (h *HTTPHandler) ListActiveUsers(c *gin.Context) {
	users, err := h.presence.ActiveUsers(c.Request.Context())
	if err != nil {
		h.logger.Errorf("failed to list active users: %v", err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: users})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
