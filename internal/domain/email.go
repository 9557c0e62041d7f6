package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// BadgeAwardedEmailData holds data for the badge-awarded email.
type BadgeAwardedEmailData struct {
	Email     string
	Name      string
	BadgeName string
}

// EmailService sends domain-level emails. Implementations must consult the
// suppression list and silently skip suppressed recipients.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendBadgeAwarded(ctx context.Context, data *BadgeAwardedEmailData) error
}
