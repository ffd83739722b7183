package domain

// Marketplace is the fixed marketplace tag attached to every listing
// request forwarded to the automation webhook.
const Marketplace = "EBAY_GB"

// UploadResult is the response body of POST /upload. URLs are in multipart
// part-arrival order, which matches the client's photo numbering.
type UploadResult struct {
	SessionID string   `json:"sessionId"`
	URLs      []string `json:"urls"`
}

// ListingRequest is the client-facing body of POST /create-listing.
type ListingRequest struct {
	SessionID string   `json:"sessionId"`
	ImageURLs []string `json:"imageUrls"`
}

// WebhookPayload is what the forwarder actually sends to the automation
// webhook: the listing request plus the marketplace tag.
type WebhookPayload struct {
	SessionID   string   `json:"sessionId"`
	ImageURLs   []string `json:"imageUrls"`
	Marketplace string   `json:"marketplace"`
}

// WebhookResult carries the webhook's HTTP status and decoded body back to
// the handler. Data holds parsed JSON when the body parses, otherwise a
// {"raw": "<text>"} wrapper.
type WebhookResult struct {
	Status int
	Data   any
}
