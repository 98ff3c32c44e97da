package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// registerRoutes wires the public endpoints.
func (app *App) registerRoutes() {
	app.router.GET("/ping", app.handlePing)
	app.router.GET("/report", app.handleGetReport)

	// Swagger UI; a bare /swagger/ redirects to the index page.
	app.router.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/" {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
			return
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
	})
}
