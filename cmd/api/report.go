package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trailsafe/internal/report"
)

// GetReportInput defines the query parameters for the report endpoint.
// Coordinates bind as pointers so a literal 0 (the equator or the prime
// meridian) is distinguishable from an omitted parameter.
type GetReportInput struct {
	Latitude    *float64 `form:"latitude" binding:"required"`  // Latitude in decimal degrees
	Longitude   *float64 `form:"longitude" binding:"required"` // Longitude in decimal degrees
	Date        string   `form:"date"`                         // Planned date, YYYY-MM-DD, objective-local
	StartTime   string   `form:"startTime"`                    // Planned start, HH:MM, objective-local
	WindowHours int      `form:"windowHours"`                  // Travel window length in hours
}

// handleGetReport godoc
// @Summary Get a trip-safety risk report
// @Description Build the unified risk report for a coordinate and planned start time: blended weather, avalanche bulletin, alerts, air quality, rainfall, snowpack, terrain condition, and the composite safety score. Upstream outages degrade individual sections and set partialData; they never fail the request.
// @Tags report
// @Accept json
// @Produce json
// @Param latitude query number true "Latitude in decimal degrees" minimum(-90) maximum(90) example(39.18000)
// @Param longitude query number true "Longitude in decimal degrees" minimum(-180) maximum(180) example(-106.82000)
// @Param date query string false "Planned date (YYYY-MM-DD in the objective's timezone)" example(2026-01-18)
// @Param startTime query string false "Planned start time (HH:MM in the objective's timezone)" example(08:00)
// @Param windowHours query integer false "Travel window length in hours" example(6)
// @Success 200 {object} report.Report
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /report [get]
func (app *App) handleGetReport(c *gin.Context) {
	var input GetReportInput

	// Bind and validate query parameters
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := app.reportService.BuildReport(c.Request.Context(), report.Request{
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		Date:        input.Date,
		StartTime:   input.StartTime,
		WindowHours: input.WindowHours,
	})
	if err != nil {
		// Check if it's a validation error from business layer
		if errors.Is(err, report.ErrInvalidCoordinates) ||
			errors.Is(err, report.ErrMalformedDate) ||
			errors.Is(err, report.ErrDateOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Other errors are internal server errors
		app.logger.Error("failed to build report",
			"latitude", *input.Latitude,
			"longitude", *input.Longitude,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.JSON(http.StatusOK, result)
}
