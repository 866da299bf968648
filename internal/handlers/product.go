package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/hhq160325/EjswebsiteSDN/internal/logging"
	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/mykafka"
	"github.com/hhq160325/EjswebsiteSDN/internal/upload"
	"github.com/hhq160325/EjswebsiteSDN/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Uploads  *upload.Storage
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func validPrice(p float64) bool {
	return p >= models.MinPrice && p <= models.MaxPrice
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		CategoryID uint    `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}
	if !validPrice(req.Price) {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be between 0 and 1000000")
	}

	prod := models.Product{
		Name:       req.Name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_created",
		"product_id": prod.ID,
		"name":       prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.Product
	if err := h.DB.Preload("Category").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// PriceRange lists products with price inside [min, max]. Absent or
// non-numeric bounds fall back to 0 and +inf.
func (h *ProductHandler) PriceRange(c echo.Context) error {
	min := parseFloatDefault(c.QueryParam("min"), 0)
	max := parseFloatDefault(c.QueryParam("max"), math.Inf(1))

	q := h.DB.Where("price >= ?", min)
	if !math.IsInf(max, 1) {
		q = q.Where("price <= ?", max)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(products) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No products in this price range")
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProductsByCategory(c echo.Context) error {
	categoryID, err := strconv.Atoi(c.Param("categoryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var products []models.Product
	if err := h.DB.Where("category_id = ?", categoryID).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, prod)
}

// UpdateProduct reads a multipart form; fields left empty keep their stored
// values, and the image is replaced only when a new file is attached.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if v := c.FormValue("name"); v != "" {
		prod.Name = v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || !validPrice(price) {
			return echo.NewHTTPError(http.StatusBadRequest, "price must be between 0 and 1000000")
		}
		prod.Price = price
	}
	if v := c.FormValue("category_id"); v != "" {
		categoryID, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		prod.CategoryID = uint(categoryID)
	}

	if file, err := c.FormFile("image"); err == nil {
		path, err := h.Uploads.Save(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot store image")
		}
		prod.Image = path
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.Delete(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_deleted",
		"product_id": prod.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
}
