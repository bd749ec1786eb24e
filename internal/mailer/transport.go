package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"

	"github.com/massgo/mailer-backend/internal/model"
)

// SMTP delivers messages over a relay, one freshly opened and authenticated
// STARTTLS connection per call. There is no connection reuse and no retrying;
// callers decide what a failure means for the rest of their campaign.
type SMTP struct {
	Host string
	Port int
}

// authError marks a rejection at the AUTH stage so classification can tell it
// apart from every other way a send can go wrong.
type authError struct {
	err error
}

func (e *authError) Error() string { return e.err.Error() }
func (e *authError) Unwrap() error { return e.err }

// Send attempts exactly one delivery and reports the outcome. Errors are
// classified, never propagated.
func (t *SMTP) Send(ctx context.Context, cred model.SenderCredential, senderName, recipient, subject, bodyHTML string, attachments []model.Attachment) model.SendOutcome {
	msg := BuildMessage(Address{Name: senderName, Address: cred.Email}, recipient, subject, bodyHTML, attachments)

	if err := t.deliver(ctx, cred, recipient, msg); err != nil {
		out := t.classify(cred, err)
		slog.Error("email send failed", "recipient", recipient, "sender", cred.Email, "kind", string(out.Kind), "error", err.Error())
		return out
	}

	slog.Info("email sent successfully", "recipient", recipient, "sender", cred.Email)
	return model.Succeeded()
}

// Probe opens a connection, authenticates and quits without sending anything.
// The rotation runner uses it to avoid committing recipients to an account
// that cannot log in.
func (t *SMTP) Probe(ctx context.Context, cred model.SenderCredential) model.SendOutcome {
	c, err := t.connect(ctx, cred)
	if err != nil {
		out := t.classify(cred, err)
		slog.Error("sender probe failed", "sender", cred.Email, "kind", string(out.Kind), "error", err.Error())
		return out
	}

	if err := c.Quit(); err != nil {
		c.Close()
		return t.classify(cred, errors.Wrap(err, "quit"))
	}

	slog.Info("sender probe succeeded", "sender", cred.Email)
	return model.Succeeded()
}

// connect dials the relay, upgrades to TLS and authenticates. The caller owns
// the returned client.
func (t *SMTP) connect(ctx context.Context, cred model.SenderCredential) (*smtp.Client, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)
	c, err := smtp.Dial(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to SMTP server")
	}

	if err := c.StartTLS(&tls.Config{ServerName: t.Host}); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "failed to start TLS")
	}

	auth := smtp.PlainAuth("", cred.Email, cred.AppPassword, t.Host)
	if err := c.Auth(auth); err != nil {
		c.Close()
		return nil, &authError{err: err}
	}

	return c, nil
}

func (t *SMTP) deliver(ctx context.Context, cred model.SenderCredential, recipient string, msg []byte) error {
	c, err := t.connect(ctx, cred)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(cred.Email); err != nil {
		return errors.Wrap(err, "failed to set sender")
	}
	if err := c.Rcpt(recipient); err != nil {
		return errors.Wrapf(err, "failed to set recipient: %s", recipient)
	}

	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "failed to get data writer")
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return errors.Wrap(err, "failed to write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to finish message")
	}

	return c.Quit()
}

func (t *SMTP) classify(cred model.SenderCredential, err error) model.SendOutcome {
	var ae *authError
	if errors.As(err, &ae) {
		return model.Failed(model.FailureAuth,
			fmt.Sprintf("Authentication failed for %s: %v. Check email/password or app password in Settings.", cred.Email, ae.err))
	}

	if disconnected(err) {
		return model.Failed(model.FailureDisconnected,
			fmt.Sprintf("SMTP server disconnected for %s: %v. Try again later.", cred.Email, err))
	}

	return model.Failed(model.FailureOther, err.Error())
}

// disconnected reports whether the relay dropped the connection underneath us.
func disconnected(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "connection reset") ||
		strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "use of closed network connection")
}
