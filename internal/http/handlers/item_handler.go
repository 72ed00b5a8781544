// Item catalog HTTP handlers.
//
// This file exposes the dashboard endpoints for a venue's found-item catalog:
//   - POST   /items       (register a found item with photos)
//   - GET    /items       (list the catalog, ETag support)
//   - DELETE /items/{id}  (remove an item and everything attached to it)
//
// All routes require venue authentication; the venue id comes from the
// bearer-token middleware.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/services"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/utils"
)

//
// DTOs
//

// CreateItemRequest is the dashboard "add found item" payload.
type CreateItemRequest struct {
	// Title is a short label for the item.
	Title string `json:"title" binding:"required,min=1,max=255" example:"Black iPhone 13"`
	// Category buckets the item (phone, wallet, keys, …).
	Category    string `json:"category" binding:"required,min=1,max=64" example:"phone"`
	Color       string `json:"color" binding:"required,min=1,max=64" example:"black"`
	Brand       string `json:"brand" binding:"max=128" example:"Apple"`
	Location    string `json:"location" binding:"max=255" example:"2nd floor reading room"`
	Description string `json:"description" example:"Cracked screen protector, blue case"`
	// FoundAt is when the item was found (RFC 3339); defaults to now.
	FoundAt time.Time `json:"found_at"`
	// Photos are base64 data URLs; 1 to 3 entries required.
	Photos []string `json:"photos" binding:"required"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListItemsResponse wraps a page of the venue's catalog and pagination
// information.
type ListItemsResponse struct {
	Items      []domain.LostItem `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// CreateItem godoc
// @ID          createItem
// @Summary     Register a found item
// @Description Adds an item with photos to the venue's catalog.
// @Tags        Items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateItemRequest  true  "Found item payload"
//
// @Success     201  {object}  domain.LostItem
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request (missing photos, too many photos)"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /items [post]
func (h *Handlers) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title, category, color and photos are required")
		return
	}

	foundAt := req.FoundAt
	if foundAt.IsZero() {
		foundAt = time.Now().UTC()
	}

	item, err := h.itemSvc.Create(c.Request.Context(), venueID(c), services.CreateItemInput{
		Title:       strings.TrimSpace(req.Title),
		Category:    strings.TrimSpace(req.Category),
		Color:       strings.TrimSpace(req.Color),
		Brand:       strings.TrimSpace(req.Brand),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		FoundAt:     foundAt,
		Photos:      req.Photos,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPhotoRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "at least one photo is required")
		case errors.Is(err, services.ErrTooManyPhotos):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest,
				fmt.Sprintf("at most %d photos are allowed", domain.MaxItemPhotos))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, item)
}

// ListItems godoc
// @ID          listItems
// @Summary     List the venue's catalog
// @Description Returns one page of the venue's items, oldest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Items
// @Produce     json
// @Security    BearerAuth
//
// @Param       page           query   int     false "Page number (default 1)"
// @Param       page_size      query   int     false "Page size (default 20, max 100)"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListItemsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items [get]
func (h *Handlers) ListItems(c *gin.Context) {
	ctx := c.Request.Context()
	vid := venueID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.itemSvc.Stats(ctx, vid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"items:%s:%d:%d"`, vid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.itemSvc.ListPage(ctx, vid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListItemsResponse{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// DeleteItem godoc
// @ID          deleteItem
// @Summary     Remove an item
// @Description Deletes an item together with its photos and any claims linked to it.
// @Tags        Items
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items/{id} [delete]
func (h *Handlers) DeleteItem(c *gin.Context) {
	itemID := c.Param("id")
	if _, err := uuid.Parse(itemID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}

	if err := h.itemSvc.Delete(c.Request.Context(), venueID(c), itemID); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	noContent(c)
}
