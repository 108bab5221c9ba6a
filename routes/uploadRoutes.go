package routes

import (
	"cityfix-be/controllers"

	"github.com/gin-gonic/gin"
)

// UploadRoutes sets up the image upload route. Anonymous reporters upload
// their photos before submitting an issue, so no auth is required.
func UploadRoutes(r *gin.Engine, uc *controllers.UploadController) {
	r.POST("/api/upload", uc.UploadImages)
}
