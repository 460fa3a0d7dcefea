package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"poll-server/internal/auth"
	"poll-server/internal/domain"
	"poll-server/internal/service"
)

const (
	userKey      = "user"
	requestIDKey = "request_id"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	polls  service.PollService
	users  service.UserService
	tokens *auth.TokenIssuer
	logger *logrus.Logger
}

func NewHandler(polls service.PollService, users service.UserService, tokens *auth.TokenIssuer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		polls:  polls,
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "PollApp Server - snapshot persistence")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/register", h.register)
		api.POST("/login", h.login)
	}

	authed := api.Group("", h.authMiddleware())
	{
		authed.GET("/profile", h.profile)
		authed.POST("/polls", h.createPoll)
		authed.GET("/polls", h.listPolls)
		authed.GET("/polls/:id", h.getPoll)
		authed.POST("/polls/:id/vote", h.castVote)
		authed.PUT("/polls/:id", h.updatePoll)
		authed.DELETE("/polls/:id", h.deletePoll)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			h.abortUnauthorized(c, "missing token")
			return
		}

		username, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			h.abortUnauthorized(c, "invalid token")
			return
		}

		user, err := h.users.GetByUsername(c.Request.Context(), username)
		if err != nil {
			h.abortUnauthorized(c, "invalid token user")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func (h *Handler) abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": domain.KindUnauthorized})
}

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(userKey).(*domain.User)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal || kind == domain.KindStorage {
		h.logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error("request failed")
		if kind == domain.KindInternal {
			msg = "internal error"
		}
	}
	c.JSON(statusFor(kind), gin.H{"error": msg, "kind": kind})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput, domain.KindLocked:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": domain.KindInvalidInput})
}

func pollIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid poll id")
		return 0, false
	}
	return id, true
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Secret   string `json:"secret"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password required")
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Secret); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": currentUser(c).Username})
}

type createPollRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
}

func (h *Handler) createPoll(c *gin.Context) {
	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title and at least two options required")
		return
	}

	poll, err := h.polls.CreatePoll(c.Request.Context(), currentUser(c).ID, service.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": poll.ID})
}

func (h *Handler) listPolls(c *gin.Context) {
	polls, err := h.polls.ListPolls(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]PollSummaryResponse, len(polls))
	for i := range polls {
		resp[i] = summaryToResponse(polls[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPoll(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	detail, err := h.polls.GetPoll(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailToResponse(*detail))
}

type voteRequest struct {
	OptionID *int64 `json:"optionId"`
}

func (h *Handler) castVote(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OptionID == nil {
		badRequest(c, "optionId required")
		return
	}

	results, err := h.polls.CastVote(c.Request.Context(), id, currentUser(c).ID, *req.OptionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoteResponse{Success: true, Options: optionsToResponse(results)})
}

type updatePollRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *Handler) updatePoll(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	var req updatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}

	err := h.polls.UpdatePoll(c.Request.Context(), id, currentUser(c).ID, service.UpdatePollInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) deletePoll(c *gin.Context) {
	id, ok := pollIDParam(c)
	if !ok {
		return
	}

	if err := h.polls.DeletePoll(c.Request.Context(), id, currentUser(c).ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
