// internal/service/rotation_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/massgo/mailer-backend/internal/model"
)

// RotationCampaign is one multi-sender campaign request. Credentials are
// iterated in order, all sharing one campaign display name.
type RotationCampaign struct {
	SenderName  string
	Credentials []model.SenderCredential
	Recipients  []string
	Subject     string
	BodyHTML    string
	Attachments []model.Attachment
}

// RotationService rotates a shared recipient cursor through sender accounts,
// capping each account and abandoning accounts that look exhausted.
type RotationService struct {
	Transport Transport

	// Delay is inserted after every attempt; same provider throttle as the
	// single-sender path, slightly longer because rotation campaigns are big.
	Delay time.Duration

	// AccountLimit caps attempts per account within one campaign.
	AccountLimit int
}

// burnMarkers are matched case-insensitively against failed-send messages
// only, never against probe outcomes. A hit means the account is done for
// this campaign. Matching English error text is known to be fragile; it is
// kept as-is for compatibility with what the front end and its users expect.
var burnMarkers = []string{
	"authentication failed",
	"account restricted",
	"too many messages",
	"limit",
}

func accountBurned(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range burnMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Run walks the sender list in order. Each sender is probed first; a failed
// probe skips the sender without consuming recipients. A usable sender then
// takes recipients from the shared cursor until its cap is reached, the list
// ends, or a failure message marks the account as burned. Recipients left
// when the senders run out are reported as unprocessed, not as failures.
func (s *RotationService) Run(ctx context.Context, c RotationCampaign) *model.CampaignResult {
	res := &model.CampaignResult{
		Total:   len(c.Recipients),
		Results: []string{},
	}

	slog.Info("starting rotation campaign", "senders", len(c.Credentials), "recipients", len(c.Recipients))

	cursor := 0
	for i, cred := range c.Credentials {
		if cursor >= len(c.Recipients) {
			slog.Info("all recipients processed")
			break
		}

		slog.Info("using sender account", "sender", cred.Email, "position", i+1, "of", len(c.Credentials))

		probe := s.Transport.Probe(ctx, cred)
		if !probe.OK {
			if probe.Kind == model.FailureAuth {
				slog.Error("authentication failed for sender, skipping", "sender", cred.Email)
				res.Results = append(res.Results,
					fmt.Sprintf("⚠️ Sender Account %s: Authentication FAILED. This account will be skipped.", cred.Email))
			} else {
				slog.Error("smtp test failed for sender, skipping", "sender", cred.Email, "error", probe.Message)
				res.Results = append(res.Results,
					fmt.Sprintf("⚠️ Sender Account %s: SMTP Test Error (%s). This account will be skipped.", cred.Email, probe.Message))
			}
			continue
		}

		attempts := 0
		for attempts < s.AccountLimit && cursor < len(c.Recipients) {
			recipient := c.Recipients[cursor]
			slog.Info("attempting email", "recipient", recipient, "sender", cred.Email,
				"account_attempt", attempts+1, "account_limit", s.AccountLimit,
				"overall", cursor+1, "total", len(c.Recipients))

			out := s.Transport.Send(ctx, cred, c.SenderName, recipient, c.Subject, c.BodyHTML, c.Attachments)
			attempts++
			cursor++

			if out.OK {
				res.Successful++
				res.Results = append(res.Results, fmt.Sprintf("✅ %s (from %s) - Success", recipient, cred.Email))
			} else {
				res.Failed++
				res.Results = append(res.Results, fmt.Sprintf("❌ %s (from %s) - Failed: %s", recipient, cred.Email, out.Message))

				if accountBurned(out.Message) {
					slog.Warn("sending issue mid-batch, moving to next sender", "sender", cred.Email, "error", out.Message)
					res.Results = append(res.Results,
						fmt.Sprintf("⚠️ Sender Account %s: Sending issue (%s). Further sends from this account stopped.", cred.Email, out.Message))
					break
				}
			}

			pause(s.Delay)
		}
	}

	res.Processed = cursor
	slog.Info("rotation campaign completed",
		"successful", res.Successful, "failed", res.Failed, "recipients_attempted", cursor)
	return res
}
