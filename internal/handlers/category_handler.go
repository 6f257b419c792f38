package handlers

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "budgie/internal/errors"
	"budgie/internal/models"
	"budgie/internal/queue"
	"budgie/internal/services"
)

// CategoryHandler handles category management and selection.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer

	// pending holds selection stamps that have not run yet. Each selection
	// keeps its own stamp; Close cancels whatever is left.
	mu      sync.Mutex
	pending []*queue.Task
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// ListCategoriesQuery holds the optional type filter.
type ListCategoriesQuery struct {
	Type string `form:"type" binding:"omitempty,category_type"`
}

// CreateCategoryRequest represents the request payload for a new top-level category.
type CreateCategoryRequest struct {
	Type models.CategoryType `json:"type" binding:"required,category_type"`
}

// CreateSubcategoryRequest represents the request payload for a new
// subcategory. An omitted type inherits the parent's.
type CreateSubcategoryRequest struct {
	Type models.CategoryType `json:"type" binding:"omitempty,category_type"`
}

// RenameCategoryRequest represents the request payload for renaming a category.
type RenameCategoryRequest struct {
	Title string `json:"title" binding:"max=100"`
}

// ListCategories returns the category tree.
// @Summary     List categories
// @Description Get top-level categories with their subcategories, most recently used first
// @Tags        categories
// @Produce     json
// @Param       type query string false "Filter by category type (income/expense)"
// @Success     200 {array} models.Category "List of categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var query ListCategoriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var categoryType *models.CategoryType
	if query.Type != "" {
		t := models.CategoryType(query.Type)
		categoryType = &t
	}

	categories, err := h.categoryService.List(categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns one category with its subcategories.
// @Summary     Get category by ID
// @Description Get a category with its subcategories
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory adds an empty custom top-level category.
// @Summary     Create a category
// @Description Create an empty custom top-level category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       request body CreateCategoryRequest true "Category type"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.AddTopLevel(req.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"type": category.Type})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// CreateSubcategory adds an empty custom subcategory under the path category.
// @Summary     Create a subcategory
// @Description Create an empty custom subcategory under a top-level category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       id path string true "Parent category ID"
// @Param       request body CreateSubcategoryRequest false "Subcategory type"
// @Success     201 {object} models.Category "Subcategory created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Failure     409 {object} ErrorResponse "Parent is itself a subcategory"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubcategory(c *gin.Context) {
	parentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubcategoryRequest
	if c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	category, err := h.categoryService.AddSubcategory(parentID, req.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_SUBCATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"parent_id": parentID, "type": category.Type})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// RenameCategory sets or clears a category's title.
// @Summary     Rename category
// @Description Set a category title; a blank title clears it
// @Tags        categories
// @Accept      json
// @Produce     json
// @Param       id path string true "Category ID"
// @Param       request body RenameCategoryRequest true "New title"
// @Success     200 {object} models.Category "Category renamed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.Rename(id, req.Title)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("RENAME_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"title": category.DisplayTitle()})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a category.
// @Summary     Delete category
// @Description Delete a category that has no subcategories and no logs
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category has subcategories or logs"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.Delete(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_CATEGORY", "category", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}

// CleanupCategories removes empty custom categories. Clients call it when
// leaving category management.
// @Summary     Clean up categories
// @Description Remove empty custom categories when leaving category management
// @Tags        categories
// @Produce     json
// @Success     200 {object} services.CleanupResult "Cleanup summary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/cleanup [post]
func (h *CategoryHandler) CleanupCategories(c *gin.Context) {
	result, err := h.categoryService.CleanupOnExit()
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CLEANUP_CATEGORIES", "category", "", c.ClientIP(),
		map[string]interface{}{
			"deleted_top_level":     result.DeletedTopLevel,
			"deleted_subcategories": result.DeletedSubcategories,
			"promoted":              result.Promoted,
		})

	c.JSON(http.StatusOK, gin.H{"cleanup": result})
}

// SelectCategory picks a category for a log. The recency stamp runs after the
// selection delay; every selection gets its own stamp.
// @Summary     Select category
// @Description Select a category for a log and stamp it as recently used
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Selected category"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Parent categories cannot be selected"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/select [post]
func (h *CategoryHandler) SelectCategory(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, task, err := h.categoryService.Select(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.track(task)

	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) track(task *queue.Task) {
	if task == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	live := h.pending[:0]
	for _, t := range h.pending {
		if !t.Done() && !t.Cancelled() {
			live = append(live, t)
		}
	}
	h.pending = append(live, task)
}

// Close cancels selection stamps that have not started. Call it when the
// server stops accepting requests.
func (h *CategoryHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range h.pending {
		t.Cancel()
	}
	h.pending = nil
}
