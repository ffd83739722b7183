package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"photolister/internal/domain"
)

type ListingService interface {
	Forward(ctx context.Context, req domain.ListingRequest) (*domain.WebhookResult, error)
}

type listingService struct {
	webhookURL string
	client     *http.Client
	log        *zap.Logger
}

func NewListingService(webhookURL string, log *zap.Logger) ListingService {
	return &listingService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Forward relays the listing request to the automation webhook. A non-nil
// result is returned for every response the webhook produced, success or
// not; an error means the call itself never completed.
func (s *listingService) Forward(ctx context.Context, req domain.ListingRequest) (*domain.WebhookResult, error) {
	payload := domain.WebhookPayload{
		SessionID:   req.SessionID,
		ImageURLs:   req.ImageURLs,
		Marketplace: domain.Marketplace,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.Error("Webhook call failed",
			zap.String("url", s.webhookURL),
			zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		// Webhooks occasionally answer with plain text; pass it through
		// instead of failing the whole call.
		data = map[string]any{"raw": string(raw)}
	}

	s.log.Info("Webhook responded",
		zap.String("sessionId", req.SessionID),
		zap.Int("status", resp.StatusCode),
		zap.Int("imageCount", len(req.ImageURLs)))

	return &domain.WebhookResult{
		Status: resp.StatusCode,
		Data:   data,
	}, nil
}
