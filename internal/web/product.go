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

func (h *Handler) Products(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Preload("Category").Find(&products).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	user, _ := session.CurrentUser(c)
	return c.Render(http.StatusOK, "products.html", echo.Map{
		"Products": products,
		"User":     user,
	})
}

func (h *Handler) AddProductPage(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}
	return c.Render(http.StatusOK, "product-add.html", echo.Map{"Categories": categories})
}

func (h *Handler) AddProduct(c echo.Context) error {
	name := c.FormValue("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}

	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price < models.MinPrice || price > models.MaxPrice {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be between 0 and 1000000")
	}

	categoryID, err := strconv.Atoi(c.FormValue("category_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	prod := models.Product{
		Name:       name,
		Price:      price,
		CategoryID: uint(categoryID),
	}

	if file, err := c.FormFile("image"); err == nil {
		path, err := h.Uploads.Save(file)
		if err != nil {
			return c.String(http.StatusInternalServerError, "Server Error")
		}
		prod.Image = path
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Redirect(http.StatusFound, "/products")
}

func (h *Handler) EditProductPage(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusNotFound, "Product not found")
		}
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	var categories []models.Category
	if err := h.DB.Find(&categories).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Render(http.StatusOK, "product-edit.html", echo.Map{
		"Product":    prod,
		"Categories": categories,
	})
}

func (h *Handler) EditProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.String(http.StatusNotFound, "Product not found")
		}
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	if v := c.FormValue("name"); v != "" {
		prod.Name = v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < models.MinPrice || price > models.MaxPrice {
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
			return c.String(http.StatusInternalServerError, "Server Error")
		}
		prod.Image = path
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Redirect(http.StatusFound, "/products")
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return c.String(http.StatusInternalServerError, "Server Error")
	}

	return c.Redirect(http.StatusFound, "/products")
}
