package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gateway "github.com/nimasrn/freight-bids/internal/gateways"
	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/queue"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/prom"
)

type Sender interface {
	Send(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error)
}

type InvitationReader interface {
	GetByID(ctx context.Context, id int64) (*model.Invitation, error)
}

type DeliveryRecorder interface {
	MarkDelivered(ctx context.Context, id int64) (*model.Invitation, error)
}

// InvitationDeliveryProcessor sends an invitation link over every requested
// channel and marks the invitation delivered once all reachable channels
// were accepted by a provider.
type InvitationDeliveryProcessor struct {
	sender      Sender
	invitations InvitationReader
	recorder    DeliveryRecorder
	idempotency *IdempotencyService
}

func NewInvitationDeliveryProcessor(sender Sender, invitations InvitationReader, recorder DeliveryRecorder, idempotency *IdempotencyService) *InvitationDeliveryProcessor {
	return &InvitationDeliveryProcessor{
		sender:      sender,
		invitations: invitations,
		recorder:    recorder,
		idempotency: idempotency,
	}
}

func (p *InvitationDeliveryProcessor) GetType() string {
	return "invitation_delivery"
}

func (p *InvitationDeliveryProcessor) Process(ctx context.Context, msg *queue.Message) error {
	var job model.InvitationDelivery
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error("decode delivery job failed", "queue_id", msg.ID, "error", err)
		return fmt.Errorf("decode delivery job: %w", err)
	}
	key := strconv.FormatInt(job.InvitationID, 10)

	pc, err := p.idempotency.AcquireProcessingLock(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			logger.Info("invitation already delivered, skipping", "invitation_id", job.InvitationID)
			return nil
		case errors.Is(err, ErrMaxRetriesExceeded):
			// the invitation stays pending; the link itself still works
			logger.Error("giving up on invitation delivery", "invitation_id", job.InvitationID, "error", err)
			return nil
		}
		return err
	}
	defer func() {
		if err := p.idempotency.ReleaseLock(ctx, pc); err != nil {
			logger.Warn("release delivery lock failed", "invitation_id", job.InvitationID, "error", err)
		}
	}()

	inv, err := p.invitations.GetByID(ctx, job.InvitationID)
	if err != nil {
		_ = p.idempotency.MarkFailure(ctx, pc, err)
		return fmt.Errorf("load invitation %d: %w", job.InvitationID, err)
	}
	if inv.Status == model.InvitationRevoked {
		logger.Info("invitation revoked before delivery", "invitation_id", job.InvitationID)
		return p.idempotency.MarkSuccess(ctx, pc)
	}

	sent, failures := 0, 0
	var lastErr error
	for _, ch := range job.Channels {
		recipient := recipientFor(job, ch)
		if recipient == "" {
			logger.Warn("no recipient for channel", "invitation_id", job.InvitationID, "channel", string(ch))
			continue
		}
		if p.idempotency.ChannelSent(ctx, key, string(ch)) {
			sent++
			continue
		}

		_, err := p.sender.Send(ctx, &gateway.SendRequest{
			InvitationID: job.InvitationID,
			Channel:      string(ch),
			Recipient:    recipient,
			Subject:      "Bid invitation: " + job.BidTitle,
			Body:         messageBody(job),
		})
		if err != nil {
			failures++
			lastErr = err
			logger.Error("invitation send failed", "invitation_id", job.InvitationID, "channel", string(ch), "error", err)
			continue
		}
		if err := p.idempotency.MarkChannelSent(ctx, key, string(ch)); err != nil {
			logger.Warn("store channel marker failed", "invitation_id", job.InvitationID, "channel", string(ch), "error", err)
		}
		if !job.InvitedAt.IsZero() {
			prom.AddInvitationDeliveryDuration(time.Since(job.InvitedAt).Seconds(), string(ch))
		}
		sent++
	}

	if failures > 0 {
		_ = p.idempotency.MarkFailure(ctx, pc, lastErr)
		return fmt.Errorf("%d of %d channels failed: %w", failures, len(job.Channels), lastErr)
	}
	if sent == 0 {
		logger.Warn("invitation has no reachable channel", "invitation_id", job.InvitationID)
		return p.idempotency.MarkSuccess(ctx, pc)
	}

	if _, err := p.recorder.MarkDelivered(ctx, job.InvitationID); err != nil {
		if errors.Is(err, model.ErrInvitationRevoked) {
			logger.Info("invitation revoked during delivery", "invitation_id", job.InvitationID)
			return p.idempotency.MarkSuccess(ctx, pc)
		}
		_ = p.idempotency.MarkFailure(ctx, pc, err)
		return fmt.Errorf("mark invitation %d delivered: %w", job.InvitationID, err)
	}

	if err := p.idempotency.MarkSuccess(ctx, pc); err != nil {
		logger.Error("mark delivery processed failed", "invitation_id", job.InvitationID, "error", err)
	}
	return nil
}

func recipientFor(job model.InvitationDelivery, ch model.Channel) string {
	switch ch {
	case model.ChannelEmail:
		return job.Email
	case model.ChannelSMS, model.ChannelWhatsApp:
		return job.Phone
	}
	return ""
}

func messageBody(job model.InvitationDelivery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, you are invited to quote on %q.", job.CarrierName, job.BidTitle)
	if job.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(job.Message)
	}
	b.WriteString("\n\nSubmit your rates: ")
	b.WriteString(job.Link)
	return b.String()
}
