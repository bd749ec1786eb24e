// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/massgo/mailer-backend/internal/model"
)

// Transport is what a campaign runner needs from the mail layer.
type Transport interface {
	Send(ctx context.Context, cred model.SenderCredential, senderName, recipient, subject, bodyHTML string, attachments []model.Attachment) model.SendOutcome
	Probe(ctx context.Context, cred model.SenderCredential) model.SendOutcome
}

// SingleCampaign is one single-sender campaign request, fully request-local.
type SingleCampaign struct {
	Credential  model.SenderCredential
	SenderName  string
	Recipients  []string
	Subject     string
	BodyHTML    string
	Attachments []model.Attachment
}

// CampaignService sends a campaign from one account, strictly sequentially.
type CampaignService struct {
	Transport Transport

	// Delay is inserted after every attempt, success or failure. It keeps the
	// send rate under the provider's abuse threshold and must stay sequential.
	Delay time.Duration
}

// Run attempts every recipient in list order exactly once. A failed send is
// recorded and the loop carries on; Successful + Failed always equals the
// recipient count.
func (s *CampaignService) Run(ctx context.Context, c SingleCampaign) *model.CampaignResult {
	res := &model.CampaignResult{
		Total:   len(c.Recipients),
		Results: []string{},
	}

	for i, recipient := range c.Recipients {
		slog.Info("attempting to send email", "recipient", recipient, "attempt", i+1, "total", len(c.Recipients))

		out := s.Transport.Send(ctx, c.Credential, c.SenderName, recipient, c.Subject, c.BodyHTML, c.Attachments)
		if out.OK {
			res.Successful++
			res.Results = append(res.Results, fmt.Sprintf("✅ %s - Success", recipient))
		} else {
			res.Failed++
			res.Results = append(res.Results, fmt.Sprintf("❌ %s - Failed: %s", recipient, out.Message))
		}

		pause(s.Delay)
	}

	res.Processed = len(c.Recipients)
	slog.Info("email sending process completed", "successful", res.Successful, "failed", res.Failed)
	return res
}

func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
