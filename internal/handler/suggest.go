package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"librarycard/internal/catalog"
)

func (h *Handler) suggestions(c *gin.Context) {
	department := strings.TrimSpace(c.Query("department"))
	if department == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Department is required"})
		return
	}
	c.JSON(http.StatusOK, h.engine.Recommend(c.Request.Context(), department))
}

func (h *Handler) departments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"departments": catalog.Departments()})
}

func (h *Handler) courses(c *gin.Context) {
	department := strings.TrimSpace(c.Query("department"))
	if department == "" {
		c.JSON(http.StatusOK, gin.H{"courses": catalog.Courses()})
		return
	}
	courses, ok := catalog.CoursesFor(department)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"department": department, "courses": courses})
}

func (h *Handler) semesters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"semesters": catalog.Semesters()})
}
