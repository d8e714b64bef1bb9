package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

// Guards groups the middleware the routes depend on.
type Guards struct {
	Authenticated []gin.HandlerFunc
	Admin         []gin.HandlerFunc
	PublicLimit   []gin.HandlerFunc
}

// Register attaches every project, product, attachment and public route to rg.
func (h *Handler) Register(rg *gin.RouterGroup, g Guards) {
	public := rg.Group("/public", g.PublicLimit...)
	public.GET("/projects", h.listPublic(validation.DefaultPublicLimit))
	public.GET("/projects/showcase", h.listPublic(validation.ShowcasePublicLimit))

	rg.GET("/product-types", h.listProductTypes)

	authed := rg.Group("", g.Authenticated...)

	projects := authed.Group("/projects")
	projects.GET("", h.listProjects)
	projects.POST("", h.createProject)
	projects.GET("/:id", h.getProject)
	projects.PUT("/:id", h.updateProject)
	projects.PATCH("/:id", h.updateProject)
	projects.DELETE("/:id", h.deleteProject)

	products := authed.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", h.createProduct)
	products.GET("/:id", h.getProduct)
	products.PUT("/:id", h.updateProduct)
	products.PATCH("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)

	authed.POST("/product-types", append(g.Admin, h.createProductType)...)

	authed.POST("/upload", h.upload)
	authed.DELETE("/upload", h.deleteUpload)
}
