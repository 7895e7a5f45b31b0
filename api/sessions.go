package api

import (
	"net/http"

	"github.com/aarondkim/flights/internal/service/trips"
	"github.com/aarondkim/flights/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the session protocol over HTTP. Operation outcomes
// are the engine's newline-terminated text lines, not JSON: the wording is
// the interop contract.
type SessionHandler struct {
	registry *session.Registry
}

func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.DELETE("/:token", h.close)

	ops := router.Group("/:token")
	ops.POST("/login", h.login)
	ops.POST("/users", h.createCustomer)
	ops.POST("/search", h.search)
	ops.POST("/book", h.book)
	ops.POST("/pay", h.pay)
	ops.GET("/reservations", h.reservations)
}

func (h *SessionHandler) create(c *gin.Context) {
	token, _ := h.registry.Create()
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *SessionHandler) close(c *gin.Context) {
	token := c.Param("token")
	if sess, ok := h.registry.Get(token); ok {
		sess.Logout()
	}
	h.registry.Remove(token)
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) session(c *gin.Context) (*trips.Session, bool) {
	sess, ok := h.registry.Get(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return nil, false
	}
	return sess, true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *SessionHandler) login(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := sess.Login(c.Request.Context(), req.Username, req.Password)
	c.String(http.StatusOK, trips.RenderLogin(req.Username, err))
}

type createCustomerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Balance  int    `json:"balance"`
}

func (h *SessionHandler) createCustomer(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := sess.CreateCustomer(c.Request.Context(), req.Username, req.Password, req.Balance)
	c.String(http.StatusOK, trips.RenderCreateCustomer(req.Username, err))
}

type searchRequest struct {
	Origin     string `json:"origin"`
	Dest       string `json:"dest"`
	DirectOnly bool   `json:"direct_only"`
	Day        int    `json:"day"`
	Limit      int    `json:"limit"`
}

func (h *SessionHandler) search(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itineraries, err := sess.Search(c.Request.Context(), req.Origin, req.Dest, req.DirectOnly, req.Day, req.Limit)
	c.String(http.StatusOK, trips.RenderSearch(itineraries, err))
}

type bookRequest struct {
	Itinerary int `json:"itinerary"`
}

func (h *SessionHandler) book(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := sess.Book(c.Request.Context(), req.Itinerary)
	c.String(http.StatusOK, trips.RenderBook(req.Itinerary, id, err))
}

type payRequest struct {
	Reservation int64 `json:"reservation"`
}

func (h *SessionHandler) pay(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := sess.Pay(c.Request.Context(), req.Reservation)
	c.String(http.StatusOK, trips.RenderPay(req.Reservation, sess.User(), balance, err))
}

func (h *SessionHandler) reservations(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	details, err := sess.Reservations(c.Request.Context())
	c.String(http.StatusOK, trips.RenderReservations(details, err))
}
