package web

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"daylist/internal/apperr"
	"daylist/internal/model"
	"daylist/internal/realtime"
	"daylist/internal/service"
)

const eventsHeartbeat = 25 * time.Second

// Auth

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := s.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) handleLogout(c *gin.Context) {
	// SignOut never fails for an already-dead session.
	if err := s.auth.SignOut(bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Tasks

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Date        *time.Time `json:"date"`
	DueDate     *time.Time `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Date        *time.Time `json:"date"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	user := currentUser(c)
	filter := service.ListFilter(c.DefaultQuery("filter", string(service.FilterIncomplete)))

	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		switch filter {
		case service.FilterIncomplete, service.FilterByDate:
			filter = service.FilterByDate
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "date cannot be combined with filter " + string(filter)})
			return
		}
		day = &parsed
	}

	tasks, err := s.tasks.List(c.Request.Context(), user.ID, filter, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user := currentUser(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), user.ID, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		Date:        req.Date,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	s.hub.Publish(user.ID, realtime.Event{Table: "tasks", Action: "INSERT"})
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	user := currentUser(c)

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		input.Priority = &p
	}

	task, err := s.tasks.Update(c.Request.Context(), user.ID, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	s.hub.Publish(user.ID, realtime.Event{Table: "tasks", Action: "UPDATE"})
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	user := currentUser(c)

	if err := s.tasks.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	s.hub.Publish(user.ID, realtime.Event{Table: "tasks", Action: "DELETE"})
	c.Status(http.StatusNoContent)
}

// Profile

type putProfileRequest struct {
	FullName string `json:"full_name"`
	AvatarID int    `json:"avatar_id"`
}

func (s *Server) handleGetProfile(c *gin.Context) {
	user := currentUser(c)

	profile, err := s.profiles.Get(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		// No profile yet: a valid state, not an error.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handlePutProfile(c *gin.Context) {
	user := currentUser(c)

	var req putProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := s.profiles.Upsert(c.Request.Context(), user.ID, req.FullName, req.AvatarID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Assistant

type assistantRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAssistant(c *gin.Context) {
	user := currentUser(c)

	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reply, err := s.assistant.Reply(c.Request.Context(), user.ID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// Events

// handleEvents streams change notifications for the caller's rows as
// server-sent events until the client disconnects.
func (s *Server) handleEvents(c *gin.Context) {
	user := currentUser(c)

	ch, cancel := s.hub.Subscribe(user.ID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	heartbeat := time.NewTicker(eventsHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-ch:
			c.SSEvent("change", ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Helpers

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// EventSource cannot set headers; allow ?token= for the stream.
	return strings.TrimSpace(c.Query("token"))
}

// respondError maps the failure taxonomy onto HTTP statuses. Internal
// failures always render the same generic body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotAuthenticated), errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}
