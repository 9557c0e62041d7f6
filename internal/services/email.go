package services

import (
	"context"
	"fmt"
	"log/slog"

	"skyspotter/internal/domain"
)

type emailService struct {
	mailer      domain.Mailer
	renderer    domain.EmailTemplateRenderer
	suppression domain.SuppressionService
	logger      *slog.Logger
}

// NewEmailService returns an EmailService that renders templates and sends
// through the Mailer. Every send first consults the suppression list; a
// suppressed recipient is skipped silently, not treated as an error.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, suppression domain.SuppressionService, logger *slog.Logger) domain.EmailService {
	return &emailService{
		mailer:      mailer,
		renderer:    renderer,
		suppression: suppression,
		logger:      logger,
	}
}

func (s *emailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome email data is nil")
	}
	return s.send(ctx, data.Email, "welcome", data)
}

func (s *emailService) SendBadgeAwarded(ctx context.Context, data *domain.BadgeAwardedEmailData) error {
	if data == nil {
		return fmt.Errorf("badge email data is nil")
	}
	return s.send(ctx, data.Email, "badge_awarded", data)
}

func (s *emailService) send(ctx context.Context, to, templateName string, data any) error {
	if s.suppression != nil {
		suppressed, err := s.suppression.IsSuppressed(ctx, to)
		if err != nil {
			return fmt.Errorf("failed to check suppression list: %w", err)
		}
		if suppressed {
			s.logger.Info("skipping email to suppressed address", "to", to, "template", templateName)
			return nil
		}
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	s.logger.Info("email sent", "to", to, "template", templateName)
	return nil
}
