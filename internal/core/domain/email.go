package domain

// EmailMessage is a rendered transactional email ready to hand to the
// email provider.
type EmailMessage struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}
