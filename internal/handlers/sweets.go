package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sweetshop/internal/catalog"
	"sweetshop/internal/middleware"
	"sweetshop/internal/models"
)

type sweetResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Description *string     `json:"description,omitempty"`
	ImageURL    *string     `json:"imageUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func toSweetResponse(item models.Item) sweetResponse {
	return sweetResponse{
		ID:          item.ID,
		Name:        item.Name,
		Category:    string(item.Category),
		Price:       json.Number(item.Price.String()),
		Quantity:    item.Quantity,
		Description: item.Description,
		ImageURL:    item.ImageRef,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toSweetResponses(items []models.Item) []sweetResponse {
	out := make([]sweetResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toSweetResponse(item))
	}
	return out
}

// sweetRequest serves both create and update; on update absent fields are
// left unchanged.
type sweetRequest struct {
	Name        *string          `json:"name"`
	Category    *models.Category `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
}

func (r sweetRequest) spec() models.ItemSpec {
	var spec models.ItemSpec
	if r.Name != nil {
		spec.Name = *r.Name
	}
	if r.Category != nil {
		spec.Category = *r.Category
	}
	if r.Price != nil {
		spec.Price = *r.Price
	}
	if r.Quantity != nil {
		spec.Quantity = *r.Quantity
	}
	spec.Description = r.Description
	spec.ImageRef = r.ImageURL
	return spec
}

func (r sweetRequest) patch() models.ItemPatch {
	return models.ItemPatch{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: r.Description,
		ImageRef:    r.ImageURL,
	}
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h HandlerSet) Categories(c *gin.Context) {
	respond(c, http.StatusOK, models.Categories)
}

func (h HandlerSet) ListSweets(c *gin.Context) {
	respond(c, http.StatusOK, toSweetResponses(h.shop.ListItems(c.Request.Context())))
}

func (h HandlerSet) SearchSweets(c *gin.Context) {
	p, err := parsePredicate(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSweetResponses(h.shop.SearchItems(c.Request.Context(), p)))
}

func parsePredicate(c *gin.Context) (catalog.Predicate, error) {
	var p catalog.Predicate
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		p.Name = &name
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		cat := models.Category(category)
		p.Category = &cat
	}
	for _, bound := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"minPrice", &p.MinPrice},
		{"maxPrice", &p.MaxPrice},
	} {
		raw := strings.TrimSpace(c.Query(bound.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return catalog.Predicate{}, models.NewValidationError(bound.key, fmt.Sprintf("%q is not a number", raw))
		}
		*bound.dst = &d
	}
	return p, nil
}

func (h HandlerSet) GetSweet(c *gin.Context) {
	item, err := h.shop.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSweetResponse(item))
}

func (h HandlerSet) CreateSweet(c *gin.Context) {
	var req sweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.shop.CreateItem(c.Request.Context(), middleware.AccessToken(c), req.spec())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toSweetResponse(item))
}

func (h HandlerSet) UpdateSweet(c *gin.Context) {
	var req sweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.shop.UpdateItem(c.Request.Context(), middleware.AccessToken(c), c.Param("id"), req.patch())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSweetResponse(item))
}

func (h HandlerSet) DeleteSweet(c *gin.Context) {
	if err := h.shop.DeleteItem(c.Request.Context(), middleware.AccessToken(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Sweet deleted"})
}

// PurchaseSweet accepts an empty body, which buys a single unit.
func (h HandlerSet) PurchaseSweet(c *gin.Context) {
	var req quantityRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
		if qty == 0 {
			h.fail(c, models.NewValidationError("quantity", "Quantity must be at least 1"))
			return
		}
	}

	item, err := h.shop.PurchaseItem(c.Request.Context(), middleware.AccessToken(c), c.Param("id"), qty)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message":           fmt.Sprintf("Purchased %d x %s", qty, item.Name),
		"remainingQuantity": item.Quantity,
		"sweet":             toSweetResponse(item),
	})
}

func (h HandlerSet) RestockSweet(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		h.fail(c, models.NewValidationError("quantity", "Quantity is required"))
		return
	}

	item, err := h.shop.RestockItem(c.Request.Context(), middleware.AccessToken(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Restocked %d x %s", *req.Quantity, item.Name),
		"newQuantity": item.Quantity,
		"sweet":       toSweetResponse(item),
	})
}
