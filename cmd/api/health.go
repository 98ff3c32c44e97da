package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingResponse is returned by the health check endpoint.
type PingResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"trailsafe"`
}

// handlePing godoc
// @Summary Ping health check
// @Description Check if the API is running
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /ping [get]
func (app *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Status:  "ok",
		Service: "trailsafe",
	})
}
