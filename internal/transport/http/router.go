package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/hhq160325/EjswebsiteSDN/internal/handlers"
	"github.com/hhq160325/EjswebsiteSDN/internal/middleware/auth"
	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/session"
	"github.com/hhq160325/EjswebsiteSDN/internal/web"
)

type Deps struct {
	DB            *gorm.DB
	JWTSecret     []byte
	SessionSecret []byte
	UploadDir     string

	UserHandler     *handlers.UserHandler
	CategoryHandler *handlers.CategoryHandler
	ProductHandler  *handlers.ProductHandler
	SearchHandler   *handlers.SearchHandler
	WebHandler      *web.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Static("/uploads", d.UploadDir)

	adminBearer := auth.Bearer(d.JWTSecret, models.RoleAdmin)

	users := e.Group("/api/users")
	users.POST("/register", d.UserHandler.Register)
	users.POST("/login", d.UserHandler.Login)
	users.GET("/users", d.UserHandler.GetUsers, adminBearer)
	users.GET("/:id", d.UserHandler.GetUser)

	categories := e.Group("/api/categories")
	categories.POST("", d.CategoryHandler.CreateCategory, adminBearer)
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/with-products", d.CategoryHandler.GetCategoriesWithProducts)
	categories.GET("/:id", d.CategoryHandler.GetCategory)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, adminBearer)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, adminBearer)

	products := e.Group("/api/products")
	products.POST("", d.ProductHandler.CreateProduct, adminBearer)
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/price-range", d.ProductHandler.PriceRange)
	products.GET("/category/:categoryId", d.ProductHandler.GetProductsByCategory)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, adminBearer)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, adminBearer)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}

	// Browser routes. Everything below shares the cookie session; the
	// guards run per-route so /login stays reachable anonymously.
	pages := e.Group("", session.Middleware(d.SessionSecret))

	requireSession := auth.RequireSession(d.JWTSecret)

	pages.GET("/login", d.WebHandler.LoginPage)
	pages.POST("/login", d.WebHandler.Login)
	pages.GET("/logout", d.WebHandler.Logout)
	pages.GET("/dashboard", d.WebHandler.Dashboard, requireSession)

	category := pages.Group("/category", requireSession)
	category.GET("", d.WebHandler.Categories)
	category.GET("/add", d.WebHandler.AddCategoryPage, auth.AdminOnly)
	category.POST("/add", d.WebHandler.AddCategory, auth.AdminOnly)
	category.GET("/edit/:id", d.WebHandler.EditCategoryPage, auth.AdminOnly)
	category.POST("/edit/:id", d.WebHandler.EditCategory, auth.AdminOnly)
	category.GET("/delete/:id", d.WebHandler.DeleteCategory, auth.AdminOnly)

	productPages := pages.Group("/products", requireSession)
	productPages.GET("", d.WebHandler.Products)
	productPages.GET("/add", d.WebHandler.AddProductPage, auth.AdminOnly)
	productPages.POST("/add", d.WebHandler.AddProduct, auth.AdminOnly)
	productPages.GET("/edit/:id", d.WebHandler.EditProductPage, auth.AdminOnly)
	productPages.POST("/edit/:id", d.WebHandler.EditProduct, auth.AdminOnly)
	productPages.GET("/delete/:id", d.WebHandler.DeleteProduct, auth.AdminOnly)
}
