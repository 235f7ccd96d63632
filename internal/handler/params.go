package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareit-platform/service-booking/internal/pkg/middleware"
	"github.com/shareit-platform/service-booking/internal/pkg/response"
)

// pathID parses a positive int64 path parameter. On failure it writes a 400
// and returns false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// callerID returns the caller id set by middleware.UserIDMiddleware.
func callerID(c *gin.Context) (int64, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing "+middleware.UserIDHeader+" header")
	}
	return id, ok
}

// parsePagination extracts from and size query parameters. Range checks are
// left to the services; only malformed numbers are rejected here.
func parsePagination(c *gin.Context, defaultSize int) (from, size int, ok bool) {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		response.BadRequest(c, "from must be an integer")
		return 0, 0, false
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSize)))
	if err != nil {
		response.BadRequest(c, "size must be an integer")
		return 0, 0, false
	}
	return from, size, true
}
