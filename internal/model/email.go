// internal/model/email.go
package model

// Attachment is one decoded upload, shared read-only by every send in a campaign.
type Attachment struct {
	Filename    string `json:"filename"`
	Content     []byte `json:"-"`
	ContentType string `json:"content_type"`
}

// SenderCredential is a Gmail account and its app password. Supplied
// per-request and never stored.
type SenderCredential struct {
	Email       string `json:"email"`
	AppPassword string `json:"-"`
}
