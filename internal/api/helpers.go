package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// retryModificationMessage is shown when the agent produced output that
// failed its structural contract; the right user action is to retry with a
// more specific request, not to give up.
const retryModificationMessage = "I had trouble generating a valid plan modification. Could you please try your request again? If the problem persists, try being more specific about what changes you'd like."

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// intParam parses a numeric path parameter.
func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		abortWithError(c, 400, "Invalid "+name+" parameter: must be a number.")
		return 0, false
	}
	return value, true
}
