package mailer

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/massgo/mailer-backend/internal/model"
)

// Address is a display name plus mailbox, rendered as "Name <addr>".
type Address struct {
	Name    string
	Address string
}

func (a Address) String() string {
	if a.Name != "" {
		escaped := strings.ReplaceAll(a.Name, "\"", "\\\"")
		return fmt.Sprintf("%s <%s>", escaped, a.Address)
	}
	return a.Address
}

// BuildMessage assembles one multipart/mixed message: an HTML body part
// followed by one part per attachment. An attachment whose declared content
// type cannot be split into main/sub type is logged and skipped; the rest of
// the message is still built.
func BuildMessage(from Address, recipient, subject, bodyHTML string, attachments []model.Attachment) []byte {
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(bodyHTML)
	msg.WriteString("\r\n")

	for _, att := range attachments {
		mainType, subType, ok := strings.Cut(att.ContentType, "/")
		if !ok || mainType == "" || subType == "" {
			slog.Error("skipping attachment with malformed content type",
				"filename", att.Filename, "content_type", att.ContentType)
			continue
		}

		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString(fmt.Sprintf("Content-Type: %s/%s\r\n", mainType, subType))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", att.Filename))
		msg.WriteString(encodeWrapped(att.Content))
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(msg.String())
}

// encodeWrapped base64-encodes content folded at 76 columns per RFC 2045.
func encodeWrapped(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)

	var sb strings.Builder
	for len(encoded) > 76 {
		sb.WriteString(encoded[:76])
		sb.WriteString("\r\n")
		encoded = encoded[76:]
	}
	sb.WriteString(encoded)

	return sb.String()
}
