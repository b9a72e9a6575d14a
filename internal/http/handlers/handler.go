package handlers

import (
	"errors"
	"net/http"
	"time"

	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/validation"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Tasks   *service.TaskService
	Items   repository.ItemStore
	Version string

	started time.Time
}

func NewHandler(tasks *service.TaskService, items repository.ItemStore, version string) *Handler {
	return &Handler{
		Tasks:   tasks,
		Items:   items,
		Version: version,
		started: time.Now(),
	}
}

// parseID reads :id and writes the 400 itself when it is not a valid identifier.
func parseID(c *gin.Context) (int64, bool) {
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid task ID is required"})
		return 0, false
	}
	return id, true
}

// readBody decodes the JSON body keeping numbers exact.
func readBody(c *gin.Context) (any, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	doc, err := validation.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	return doc, true
}

// respondError maps domain errors to status codes. Anything unexpected is
// logged in full and answered with the opaque fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid task ID is required"})
	default:
		logger.WithContext(c.Request.Context()).Error(fallback,
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
