package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/services"
)

type ProductHandler struct {
	products services.ProductService
}

func NewProductHandler(products services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Title       string   `json:"title" binding:"required,min=1"`
	Price       float64  `json:"price" binding:"gte=0"`
	Description string   `json:"description"`
	Slug        string   `json:"slug" binding:"omitempty,slug"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Sizes       []string `json:"sizes" binding:"required"`
	Gender      string   `json:"gender" binding:"required,gender"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

type updateProductRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Description *string  `json:"description"`
	Slug        *string  `json:"slug" binding:"omitempty,slug"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	Sizes       []string `json:"sizes"`
	Gender      *string  `json:"gender" binding:"omitempty,gender"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

type paginationQuery struct {
	Limit  int `form:"limit" binding:"omitempty,gt=0"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	created, err := h.products.Create(c.Request.Context(), services.CreateProductInput{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Slug:        req.Slug,
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		Gender:      req.Gender,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		respondServiceError(c, "create_product_failed", err)
		return
	}
	response.RespondCreated(c, created)
}

// GET /products?limit=&offset=
func (h *ProductHandler) FindAll(c *gin.Context) {
	var q paginationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	page, err := h.products.FindAll(c.Request.Context(), services.Pagination{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		respondServiceError(c, "list_products_failed", err)
		return
	}
	response.RespondOK(c, page)
}

// GET /products/:search
func (h *ProductHandler) FindOne(c *gin.Context) {
	product, err := h.products.FindOnePlain(c.Request.Context(), c.Param("search"))
	if err != nil {
		respondServiceError(c, "get_product_failed", err)
		return
	}
	response.RespondOK(c, product)
}

// PATCH /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := h.products.Update(c.Request.Context(), id, services.UpdateProductInput{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Slug:        req.Slug,
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		Gender:      req.Gender,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		respondServiceError(c, "update_product_failed", err)
		return
	}
	response.RespondOK(c, updated)
}

// DELETE /products/:id
func (h *ProductHandler) Remove(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	if err := h.products.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, "delete_product_failed", err)
		return
	}
	response.RespondMessage(c, fmt.Sprintf("Product with id %s deleted", id))
}

func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("Validation failed (uuid is expected)"))
		return uuid.Nil, false
	}
	return id, true
}
