package entity

type EmailKind string

const (
	EmailKindRestock EmailKind = "restock"
	EmailKindStatus  EmailKind = "status"
)

// EmailMessage is built per send and never persisted.
type EmailMessage struct {
	Kind    EmailKind
	Subject string
	Body    string
	From    string
	To      []string
}
