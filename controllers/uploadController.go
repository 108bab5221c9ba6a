package controllers

import (
	"net/http"

	"cityfix-be/pkg/resp"
	"cityfix-be/services"

	"github.com/gin-gonic/gin"
)

const (
	maxUploadFiles    = 9
	maxUploadFileSize = 5 << 20 // 5MB per image
)

type UploadController struct {
	storage services.ImageStorage
}

func NewUploadController(storage services.ImageStorage) *UploadController {
	return &UploadController{storage: storage}
}

// UploadImages stores the posted images and returns their URLs. The rest of
// the system only ever carries these URL strings.
func (uc *UploadController) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		resp.BadRequest(c, "invalid multipart form")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		resp.BadRequest(c, "no files provided")
		return
	}
	if len(files) > maxUploadFiles {
		resp.BadRequest(c, "at most 9 files per upload")
		return
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > maxUploadFileSize {
			resp.BadRequest(c, "file exceeds the 5MB limit")
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "message": "Failed to read upload"})
			return
		}

		url, err := uc.storage.Store(file.Filename, src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "message": "Failed to store upload"})
			return
		}
		urls = append(urls, url)
	}

	resp.OK(c, gin.H{"urls": urls})
}
