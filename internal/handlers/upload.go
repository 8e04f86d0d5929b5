package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"techblog/internal/services"
)

// maxImageSize caps uploads at 5MB.
const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// checkImageUpload validates type and size before anything leaves the
// process. Returns an empty string when the file is acceptable.
func checkImageUpload(header *multipart.FileHeader) string {
	if !allowedImageTypes[header.Header.Get("Content-Type")] {
		return "Only jpeg, png, gif and webp images are allowed"
	}
	if header.Size > maxImageSize {
		return "Image must be smaller than 5MB"
	}
	return ""
}

// UploadHandler serves generic image uploads for post covers and inline
// content images.
type UploadHandler struct{}

func NewUploadHandler() *UploadHandler {
	return &UploadHandler{}
}

// Upload pushes a multipart image to the image host (POST /api/upload).
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		Fail(c, http.StatusBadRequest, "Please provide an image file")
		return
	}
	defer file.Close()

	if msg := checkImageUpload(header); msg != "" {
		Fail(c, http.StatusBadRequest, msg)
		return
	}

	result, err := services.UploadImage(file, header)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Image upload failed")
		return
	}
	OK(c, http.StatusOK, gin.H{
		"url":        result.URL,
		"deleteHash": result.DeleteHash,
	})
}

// Delete removes a hosted image by delete hash (DELETE /api/upload/:deleteHash).
func (h *UploadHandler) Delete(c *gin.Context) {
	deleteHash := c.Param("deleteHash")
	if deleteHash == "" {
		Fail(c, http.StatusBadRequest, "Missing delete hash")
		return
	}
	if err := services.DeleteImage(deleteHash); err != nil {
		Fail(c, http.StatusInternalServerError, "Image delete failed")
		return
	}
	OK(c, http.StatusOK, gin.H{"message": "Image deleted"})
}
