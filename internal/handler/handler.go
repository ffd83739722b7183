package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"photolister/internal/config"
	"photolister/internal/domain"
	"photolister/internal/service"
)

// fileFieldName is the multipart field the client posts every photo under.
const fileFieldName = "files"

type Handler struct {
	uploads  service.UploadService
	listings service.ListingService
	cfg      *config.Config
	log      *zap.Logger
}

func NewHandler(uploads service.UploadService, listings service.ListingService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		uploads:  uploads,
		listings: listings,
		cfg:      cfg,
		log:      log,
	}
}

// UploadPhotos streams the multipart body part by part. Accepted files start
// their storage write immediately; the response waits for all of them.
func (h *Handler) UploadPhotos(c *gin.Context) {
	mr, err := c.Request.MultipartReader()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart/form-data body required"})
		return
	}

	var (
		sessionID string
		batch     *service.Batch
		fileCount int
	)

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed multipart body", "details": err.Error()})
			return
		}

		if part.FormName() == "sessionId" && part.FileName() == "" {
			value, _ := io.ReadAll(io.LimitReader(part, 256))
			part.Close()
			if sessionID == "" {
				sessionID = strings.TrimSpace(string(value))
			}
			continue
		}

		if part.FormName() != fileFieldName || part.FileName() == "" {
			drain(part)
			continue
		}

		fileCount++
		if fileCount > h.cfg.App.MaxFiles {
			// The client caps its selection at the same limit; anything past
			// it here is ignored rather than failing the batch.
			drain(part)
			continue
		}

		contentType := part.Header.Get("Content-Type")
		if !service.AllowedImageType(contentType) {
			h.log.Info("Skipping file with unsupported content type",
				zap.String("filename", part.FileName()),
				zap.String("contentType", contentType))
			drain(part)
			continue
		}

		data, err := readLimited(part, h.cfg.App.MaxFileSize)
		part.Close()
		if errors.Is(err, service.ErrFileTooLarge) {
			h.log.Warn("Rejecting oversized file",
				zap.String("filename", part.FileName()),
				zap.Int64("limit", h.cfg.App.MaxFileSize))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "file too large",
				"details": part.FileName(),
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file part", "details": err.Error()})
			return
		}

		if batch == nil {
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			batch = h.uploads.NewBatch(c.Request.Context(), sessionID)
		}
		batch.Add(part.FileName(), contentType, data)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	urls := make([]string, 0)
	if batch != nil {
		urls, err = batch.Wait()
		if err != nil {
			h.log.Error("Upload batch failed",
				zap.String("sessionId", sessionID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed", "details": err.Error()})
			return
		}
	}

	h.log.Info("Upload batch stored",
		zap.String("sessionId", sessionID),
		zap.Int("files", len(urls)))

	c.JSON(http.StatusOK, domain.UploadResult{
		SessionID: sessionID,
		URLs:      urls,
	})
}

// CreateListing validates the request and relays it to the webhook.
func (h *Handler) CreateListing(c *gin.Context) {
	var req domain.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}
	if len(req.ImageURLs) == 0 || len(req.ImageURLs) > h.cfg.App.MaxFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrls must contain between 1 and 20 entries"})
		return
	}

	result, err := h.listings.Forward(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook call failed", "details": err.Error()})
		return
	}

	if result.Status < 200 || result.Status > 299 {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "webhook returned an error",
			"status": result.Status,
			"data":   result.Data,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": result.Data})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func drain(part *multipart.Part) {
	_, _ = io.Copy(io.Discard, part)
	part.Close()
}

// readLimited reads at most limit bytes, failing with ErrFileTooLarge when
// the part holds more than that.
func readLimited(part *multipart.Part, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, service.ErrFileTooLarge
	}
	return data, nil
}
