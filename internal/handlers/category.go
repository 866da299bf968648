package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/hhq160325/EjswebsiteSDN/internal/logging"
	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/mykafka"
)

type CategoryHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type categoryWithProducts struct {
	models.Category
	Products []models.Product `json:"products"`
}

func (h *CategoryHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "category_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}

	category := models.Category{Name: req.Name}
	if err := h.DB.Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(category.ID), map[string]any{
		"type":        "category_created",
		"category_id": category.ID,
		"name":        category.Name,
	})

	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategoriesWithProducts(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	out := make([]categoryWithProducts, 0, len(categories))
	for _, category := range categories {
		// Empty categories serialize as "products": [], not null.
		products := make([]models.Product, 0)
		if err := h.DB.Where("category_id = ?", category.ID).Find(&products).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		out = append(out, categoryWithProducts{Category: category, Products: products})
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	products := make([]models.Product, 0)
	if err := h.DB.Where("category_id = ?", category.ID).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, categoryWithProducts{Category: category, Products: products})
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	category.Name = req.Name
	if err := h.DB.Save(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(category.ID), map[string]any{
		"type":        "category_updated",
		"category_id": category.ID,
		"name":        category.Name,
	})

	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes the category and then bulk-deletes its products.
// The cascade runs before the success response so a caller can never observe
// orphaned products after a 200. The two deletes are not wrapped in a
// transaction; a crash in between leaves orphans (accepted trade-off).
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category_delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	res := h.DB.Where("category_id = ?", category.ID).Delete(&models.Product{})
	if res.Error != nil {
		l.Error("cascade_failed", "category_id", category.ID, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, fmt.Sprint(category.ID), map[string]any{
		"type":             "category_deleted",
		"category_id":      category.ID,
		"products_removed": res.RowsAffected,
	})

	l.Info("category_deleted", "category_id", category.ID, "products_removed", res.RowsAffected)
	return c.JSON(http.StatusOK, echo.Map{"message": "Category and related products deleted"})
}
