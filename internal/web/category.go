package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/session"
)

func (h *Handler) Categories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	user, _ := session.CurrentUser(c)
	return c.Render(http.StatusOK, "category.html", echo.Map{
		"Categories": categories,
		"User":       user,
	})
}

func (h *Handler) AddCategoryPage(c echo.Context) error {
	return c.Render(http.StatusOK, "category-add.html", nil)
}

func (h *Handler) AddCategory(c echo.Context) error {
	name := c.FormValue("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}

	category := models.Category{Name: name}
	if err := h.DB.Create(&category).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Redirect(http.StatusFound, "/category")
}

func (h *Handler) EditCategoryPage(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusNotFound, "Category not found")
		}
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Render(http.StatusOK, "category-edit.html", echo.Map{"Category": category})
}

func (h *Handler) EditCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Model(&models.Category{}).Where("id = ?", id).
		Update("name", c.FormValue("name")).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Redirect(http.StatusFound, "/category")
}

// DeleteCategory cascades like the API route: products of the category go
// with it, before the redirect.
func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}
	if err := h.DB.Where("category_id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Redirect(http.StatusFound, "/category")
}
