// Package endpoint provides the operational endpoints mounted next to the API.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is the health status of one dependency.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker reports health for the service's dependencies.
type Checker func(ctx context.Context) []Check

// Health returns a handler that reports service health including dependency
// statuses. Any unhealthy dependency turns the response into a 503.
func Health(serviceName string, checker Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		var checks []Check

		if checker != nil {
			checks = checker(c.Request.Context())
			for _, ch := range checks {
				if ch.Status == "unhealthy" {
					status = "unhealthy"
					break
				}
			}
		}

		httpStatus := http.StatusOK
		if status == "unhealthy" {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": checks,
		})
	}
}
