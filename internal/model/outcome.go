// internal/model/outcome.go
package model

// FailureKind classifies a failed send attempt.
type FailureKind string

const (
	FailureAuth         FailureKind = "authentication_failed"
	FailureDisconnected FailureKind = "server_disconnected"
	FailureOther        FailureKind = "other"
)

// SendOutcome is the result of exactly one delivery (or probe) attempt.
// The transport always returns one of these instead of an error so that a
// bad send never aborts the campaign around it.
type SendOutcome struct {
	OK      bool
	Kind    FailureKind
	Message string
}

func Succeeded() SendOutcome {
	return SendOutcome{OK: true, Message: "Success"}
}

func Failed(kind FailureKind, message string) SendOutcome {
	return SendOutcome{OK: false, Kind: kind, Message: message}
}
