package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"skyspotter/internal/adapters/sns"
	"skyspotter/internal/delivery/http/helpers"
	"skyspotter/internal/domain"
)

// sesNotification is the inner message SES publishes through SNS.
type sesNotification struct {
	NotificationType string `json:"notificationType"`
	Mail             struct {
		MessageID string `json:"messageId"`
	} `json:"mail"`
	Bounce *struct {
		BounceType        string    `json:"bounceType"`
		BounceSubType     string    `json:"bounceSubType"`
		Timestamp         time.Time `json:"timestamp"`
		BouncedRecipients []struct {
			EmailAddress   string `json:"emailAddress"`
			DiagnosticCode string `json:"diagnosticCode"`
		} `json:"bouncedRecipients"`
	} `json:"bounce,omitempty"`
	Complaint *struct {
		ComplaintFeedbackType string    `json:"complaintFeedbackType"`
		FeedbackID            string    `json:"feedbackId"`
		Timestamp             time.Time `json:"timestamp"`
		ComplainedRecipients  []struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"complainedRecipients"`
	} `json:"complaint,omitempty"`
}

// WebhookResponse is the success body for webhook deliveries.
type WebhookResponse struct {
	Status         string `json:"status"`
	ProcessedCount int    `json:"processed_count"`
}

// EnvelopeVerifier authenticates SNS envelopes and completes subscription
// handshakes.
type EnvelopeVerifier interface {
	Verify(ctx context.Context, env *sns.Envelope) error
	ConfirmSubscription(ctx context.Context, env *sns.Envelope) error
}

// WebhookController ingests SES bounce/complaint notifications delivered
// through SNS. Envelopes are verified before any database work happens.
type WebhookController struct {
	Logger      *slog.Logger
	Verifier    EnvelopeVerifier
	Suppression domain.SuppressionService
}

// NewWebhookController creates a WebhookController.
func NewWebhookController(logger *slog.Logger, verifier EnvelopeVerifier, suppression domain.SuppressionService) *WebhookController {
	return &WebhookController{Logger: logger, Verifier: verifier, Suppression: suppression}
}

// HandleNotification godoc
// @Summary Ingest an SES bounce or complaint notification
// @Description Accepts an SNS envelope: confirms subscriptions, verifies the signature, then records bounces/complaints and updates the suppression list.
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains WebhookResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: invalid_signature"
// @Router /webhooks/ses/bounce [post]
func (c *WebhookController) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "failed to read body")
		return
	}
	var env sns.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed envelope JSON")
		return
	}

	if env.Type == sns.TypeSubscriptionConfirmation {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := c.Verifier.ConfirmSubscription(ctx, &env); err != nil {
			// Non-fatal: SNS retries the handshake.
			c.Logger.Warn("subscription confirmation failed", "topic", env.TopicArn, "error", err)
		} else {
			c.Logger.Info("subscription confirmed", "topic", env.TopicArn)
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, WebhookResponse{Status: "confirmed"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := c.Verifier.Verify(ctx, &env); err != nil {
		c.Logger.Warn("envelope signature rejected", "message_id", env.MessageId, "error", err)
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeInvalidSignature, "envelope signature verification failed")
		return
	}

	var notification sesNotification
	if err := json.Unmarshal([]byte(env.Message), &notification); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed notification payload")
		return
	}

	switch notification.NotificationType {
	case "Bounce":
		c.handleBounce(w, r, &notification, []byte(env.Message))
	case "Complaint":
		c.handleComplaint(w, r, &notification, []byte(env.Message))
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unsupported notification type")
	}
}

// handleBounce processes each bounced recipient independently; one bad
// recipient is logged and skipped, never aborting the rest of the batch.
func (c *WebhookController) handleBounce(w http.ResponseWriter, r *http.Request, n *sesNotification, raw []byte) {
	if n.Bounce == nil || len(n.Bounce.BouncedRecipients) == 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "bounce notification has no recipients")
		return
	}
	processed := 0
	for _, recipient := range n.Bounce.BouncedRecipients {
		ev := &domain.BounceEvent{
			Email:             recipient.EmailAddress,
			BounceType:        mapBounceType(n.Bounce.BounceType),
			BounceSubtype:     n.Bounce.BounceSubType,
			DiagnosticCode:    recipient.DiagnosticCode,
			ProviderMessageID: n.Mail.MessageID,
			Timestamp:         n.Bounce.Timestamp,
			RawPayload:        raw,
		}
		if err := c.Suppression.ProcessBounce(r.Context(), ev); err != nil {
			c.Logger.Error("failed to process bounced recipient", "email", recipient.EmailAddress, "error", err)
			continue
		}
		processed++
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookResponse{Status: "ok", ProcessedCount: processed})
}

func (c *WebhookController) handleComplaint(w http.ResponseWriter, r *http.Request, n *sesNotification, raw []byte) {
	if n.Complaint == nil || len(n.Complaint.ComplainedRecipients) == 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "complaint notification has no recipients")
		return
	}
	processed := 0
	for _, recipient := range n.Complaint.ComplainedRecipients {
		ev := &domain.ComplaintEvent{
			Email:             recipient.EmailAddress,
			ComplaintType:     n.Complaint.ComplaintFeedbackType,
			FeedbackID:        n.Complaint.FeedbackID,
			ProviderMessageID: n.Mail.MessageID,
			Timestamp:         n.Complaint.Timestamp,
			RawPayload:        raw,
		}
		if err := c.Suppression.ProcessComplaint(r.Context(), ev); err != nil {
			c.Logger.Error("failed to process complained recipient", "email", recipient.EmailAddress, "error", err)
			continue
		}
		processed++
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookResponse{Status: "ok", ProcessedCount: processed})
}

// mapBounceType translates SES bounce classes onto the platform's taxonomy.
func mapBounceType(sesType string) domain.BounceType {
	switch sesType {
	case "Permanent":
		return domain.BounceHard
	case "Transient":
		return domain.BounceTransient
	default:
		return domain.BounceSoft
	}
}
