package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"techblog/internal/config"
	"techblog/internal/metrics"
)

// imgurBaseURL is a var so tests can point the client at a local fake.
var imgurBaseURL = "https://api.imgur.com"

// ImgurResponse is the image host's envelope.
type ImgurResponse struct {
	Data struct {
		ID         string `json:"id"`
		Link       string `json:"link"`
		DeleteHash string `json:"deletehash"`
		Type       string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImageUploadResult is what upload callers get back. DeleteHash is returned
// to the client so it can later remove the image.
type ImageUploadResult struct {
	URL        string `json:"url"`
	DeleteHash string `json:"deleteHash"`
	ID         string `json:"id"`
}

var imgurClient = &http.Client{Timeout: 30 * time.Second}

// UploadImage sends the file to the image host as base64 form data and
// returns the hosted URL plus the delete hash.
func UploadImage(file multipart.File, header *multipart.FileHeader) (*ImageUploadResult, error) {
	clientID := config.GlobalConfig.Imgur.ClientID
	if clientID == "" {
		return nil, fmt.Errorf("IMGUR_CLIENT_ID is not configured")
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	base64Image := base64.StdEncoding.EncodeToString(fileBytes)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64Image); err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}
	writer.Close()

	req, err := http.NewRequest("POST", imgurBaseURL+"/3/image", &requestBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+clientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := imgurClient.Do(req)
	if err != nil {
		metrics.IncUpload("error")
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var imgurResp ImgurResponse
	if err := json.Unmarshal(body, &imgurResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !imgurResp.Success {
		metrics.IncUpload("rejected")
		return nil, fmt.Errorf("image host rejected upload: status %d", imgurResp.Status)
	}

	metrics.IncUpload("ok")
	return &ImageUploadResult{
		URL:        imgurResp.Data.Link,
		DeleteHash: imgurResp.Data.DeleteHash,
		ID:         imgurResp.Data.ID,
	}, nil
}

// DeleteImage removes a previously uploaded image by its delete hash.
func DeleteImage(deleteHash string) error {
	clientID := config.GlobalConfig.Imgur.ClientID
	if clientID == "" {
		return fmt.Errorf("IMGUR_CLIENT_ID is not configured")
	}

	req, err := http.NewRequest("DELETE", imgurBaseURL+"/3/image/"+deleteHash, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+clientID)

	resp, err := imgurClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var imgurResp ImgurResponse
	if err := json.Unmarshal(body, &imgurResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !imgurResp.Success {
		return fmt.Errorf("image host rejected delete: status %d", imgurResp.Status)
	}
	return nil
}
