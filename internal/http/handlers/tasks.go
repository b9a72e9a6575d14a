package handlers

import (
	"net/http"

	"todo_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListTasks handles GET /api/tasks?status=&sort=. Unknown values fall back silently.
func (h *Handler) ListTasks(c *gin.Context) {
	q := domain.ParseQuery(c.Query("status"), c.Query("sort"))
	tasks, err := h.Tasks.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c *gin.Context) {
	doc, ok := readBody(c)
	if !ok {
		return
	}
	task, err := h.Tasks.Create(c.Request.Context(), doc)
	if err != nil {
		respondError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id (full replace).
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, ok := readBody(c)
	if !ok {
		return
	}
	task, err := h.Tasks.Update(c.Request.Context(), id, doc)
	if err != nil {
		respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, ok := readBody(c)
	if !ok {
		return
	}
	task, err := h.Tasks.SetStatus(c.Request.Context(), id, doc)
	if err != nil {
		respondError(c, err, "Failed to update task status")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.Tasks.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, res)
}
