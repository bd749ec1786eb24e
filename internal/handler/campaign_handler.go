// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/massgo/mailer-backend/internal/model"
	"github.com/massgo/mailer-backend/internal/service"
)

const maxUploadMemory = 32 << 20

// CampaignHandler holds the dependencies for the send endpoints.
type CampaignHandler struct {
	Single   *service.CampaignService
	Rotation *service.RotationService
}

// SendEmails handles POST /send_emails: one sender account, a comma-separated
// recipient list, optional file attachments.
func (h *CampaignHandler) SendEmails(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request for /send_emails")
	_ = r.ParseMultipartForm(maxUploadMemory)

	senderName := r.FormValue("sender_name")
	senderEmail := r.FormValue("sender_email_account")
	appPassword := r.FormValue("sender_app_password")
	subject := r.FormValue("email_subject")
	recipientsStr := r.FormValue("recipients")
	bodyHTML := r.FormValue("email_body_html")

	if senderName == "" || senderEmail == "" || appPassword == "" || subject == "" || recipientsStr == "" || bodyHTML == "" {
		slog.Warn("missing required form data for /send_emails")
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Missing required form data. Ensure sender account, app password (from Settings), name, subject, recipients, and body are provided.",
			"results": []string{},
		})
		return
	}

	recipients := splitRecipients(recipientsStr)
	if len(recipients) == 0 {
		slog.Warn("no recipients provided for /send_emails")
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "No recipients provided.",
			"results": []string{},
		})
		return
	}

	attachments := attachmentsFromRequest(r)

	res := h.Single.Run(r.Context(), service.SingleCampaign{
		Credential:  model.SenderCredential{Email: senderEmail, AppPassword: appPassword},
		SenderName:  senderName,
		Recipients:  recipients,
		Subject:     subject,
		BodyHTML:    bodyHTML,
		Attachments: attachments,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Email sending process completed.",
		"total":      res.Total,
		"successful": res.Successful,
		"failed":     res.Failed,
		"results":    res.Results,
	})
}

// SendMassGoEmails handles POST /send_massgo_emails: several sender accounts
// rotated over one recipient list. The account and password lists arrive as
// JSON-encoded form fields and must pair up positionally.
func (h *CampaignHandler) SendMassGoEmails(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request for /send_massgo_emails")
	_ = r.ParseMultipartForm(maxUploadMemory)

	senderName := r.FormValue("campaign_sender_name")
	appPasswordsStr := r.FormValue("app_passwords_list")
	senderEmailsStr := r.FormValue("sender_emails_list")
	subject := r.FormValue("email_subject")
	recipientsStr := r.FormValue("recipients")
	bodyHTML := r.FormValue("email_body_html")

	if senderName == "" || appPasswordsStr == "" || senderEmailsStr == "" || subject == "" || recipientsStr == "" || bodyHTML == "" {
		slog.Warn("missing required form data for /send_massgo_emails")
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Missing required form data for MassGo.",
			"results": []string{},
		})
		return
	}

	var appPasswords, senderEmails, recipients []string
	if err := firstErr(
		json.Unmarshal([]byte(appPasswordsStr), &appPasswords),
		json.Unmarshal([]byte(senderEmailsStr), &senderEmails),
		json.Unmarshal([]byte(recipientsStr), &recipients),
	); err != nil {
		slog.Error("error decoding JSON data for MassGo", "error", err.Error())
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": fmt.Sprintf("Invalid JSON data provided: %v", err),
			"results": []string{},
		})
		return
	}

	if len(appPasswords) == 0 || len(senderEmails) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "App passwords list or sender emails list is empty.",
			"results": []string{},
		})
		return
	}
	if len(appPasswords) != len(senderEmails) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Mismatch between number of app passwords and sender emails.",
			"results": []string{},
		})
		return
	}
	if len(recipients) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "No recipients provided for MassGo.",
			"results": []string{},
		})
		return
	}

	credentials := make([]model.SenderCredential, len(senderEmails))
	for i := range senderEmails {
		credentials[i] = model.SenderCredential{Email: senderEmails[i], AppPassword: appPasswords[i]}
	}

	attachments := attachmentsFromRequest(r)

	res := h.Rotation.Run(r.Context(), service.RotationCampaign{
		SenderName:  senderName,
		Credentials: credentials,
		Recipients:  recipients,
		Subject:     subject,
		BodyHTML:    bodyHTML,
		Attachments: attachments,
	})

	message := "MassGo campaign process completed."
	if res.Processed < res.Total {
		unprocessed := res.Total - res.Processed
		message += fmt.Sprintf(" %d recipients were not attempted, possibly due to exhaustion of sender accounts or errors.", unprocessed)
		slog.Warn("recipients were not attempted", "count", unprocessed)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":                  message,
		"total_recipients_in_list": res.Total,
		"recipients_processed":     res.Processed,
		"successful":               res.Successful,
		"failed":                   res.Failed,
		"results":                  res.Results,
	})
}

// splitRecipients splits a comma-separated address list, dropping blanks.
func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// attachmentsFromRequest reads every uploaded file under "attachments". A
// file that cannot be read is logged and skipped; the campaign still runs
// with whatever decoded cleanly.
func attachmentsFromRequest(r *http.Request) []model.Attachment {
	if r.MultipartForm == nil {
		return nil
	}

	var attachments []model.Attachment
	for _, fh := range r.MultipartForm.File["attachments"] {
		if fh.Filename == "" {
			continue
		}

		f, err := fh.Open()
		if err != nil {
			slog.Error("error opening attachment", "filename", fh.Filename, "error", err.Error())
			continue
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("error reading attachment", "filename", fh.Filename, "error", err.Error())
			continue
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		attachments = append(attachments, model.Attachment{
			Filename:    fh.Filename,
			Content:     content,
			ContentType: contentType,
		})
		slog.Info("attachment processed", "filename", fh.Filename, "size", len(content))
	}

	return attachments
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}
