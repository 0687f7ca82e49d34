package v1

import (
	"strconv"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// queryPage reads page/size query params and clamps them the same way the usecases do.
func queryPage(c *gin.Context, sizeKey string, def, max int) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query(sizeKey))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperror.BadRequest("Invalid " + name))
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}
