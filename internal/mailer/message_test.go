package mailer_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massgo/mailer-backend/internal/mailer"
	"github.com/massgo/mailer-backend/internal/model"
)

func TestBuildMessage_Headers(t *testing.T) {
	msg := string(mailer.BuildMessage(
		mailer.Address{Name: "Acme Newsletter", Address: "ops@acme.test"},
		"alice@example.com",
		"Launch day",
		"<p>Hello</p>",
		nil,
	))

	assert.Contains(t, msg, "From: Acme Newsletter <ops@acme.test>\r\n")
	assert.Contains(t, msg, "To: alice@example.com\r\n")
	assert.Contains(t, msg, "Subject: Launch day\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>Hello</p>")
}

func TestBuildMessage_AddressWithoutName(t *testing.T) {
	msg := string(mailer.BuildMessage(
		mailer.Address{Address: "ops@acme.test"},
		"alice@example.com", "s", "b", nil,
	))

	assert.Contains(t, msg, "From: ops@acme.test\r\n")
}

func TestBuildMessage_AttachmentEncoded(t *testing.T) {
	content := []byte("quarterly figures, draft")
	msg := string(mailer.BuildMessage(
		mailer.Address{Name: "Ops", Address: "ops@acme.test"},
		"alice@example.com",
		"Report",
		"<p>attached</p>",
		[]model.Attachment{{Filename: "report.pdf", Content: content, ContentType: "application/pdf"}},
	))

	assert.Contains(t, msg, "Content-Type: application/pdf\r\n")
	assert.Contains(t, msg, "Content-Transfer-Encoding: base64\r\n")
	assert.Contains(t, msg, `Content-Disposition: attachment; filename="report.pdf"`)
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString(content))
}

func TestBuildMessage_LongAttachmentWrapped(t *testing.T) {
	content := make([]byte, 600)
	for i := range content {
		content[i] = byte(i % 251)
	}
	msg := string(mailer.BuildMessage(
		mailer.Address{Name: "Ops", Address: "ops@acme.test"},
		"alice@example.com", "s", "b",
		[]model.Attachment{{Filename: "blob.bin", Content: content, ContentType: "application/octet-stream"}},
	))

	// No base64 line may exceed the RFC 2045 fold width.
	inPayload := false
	for _, line := range strings.Split(msg, "\r\n") {
		if strings.HasPrefix(line, "Content-Disposition: attachment") {
			inPayload = true
			continue
		}
		if inPayload && strings.HasPrefix(line, "--") {
			break
		}
		if inPayload {
			assert.LessOrEqual(t, len(line), 76)
		}
	}
}

func TestBuildMessage_BadContentTypeSkipped(t *testing.T) {
	msg := string(mailer.BuildMessage(
		mailer.Address{Name: "Ops", Address: "ops@acme.test"},
		"alice@example.com",
		"Report",
		"<p>attached</p>",
		[]model.Attachment{
			{Filename: "broken.bin", Content: []byte("x"), ContentType: "not-a-mime-type"},
			{Filename: "notes.txt", Content: []byte("still here"), ContentType: "text/plain"},
		},
	))

	require.NotContains(t, msg, "broken.bin")
	assert.Contains(t, msg, `filename="notes.txt"`)
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString([]byte("still here")))
	assert.Contains(t, msg, "<p>attached</p>")
}

func TestBuildMessage_Terminated(t *testing.T) {
	msg := string(mailer.BuildMessage(
		mailer.Address{Name: "Ops", Address: "ops@acme.test"},
		"alice@example.com", "s", "b", nil,
	))

	require.True(t, strings.HasSuffix(msg, "--\r\n"), "message must end with the closing boundary")
}
