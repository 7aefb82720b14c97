package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"commercebot/internal/metrics"
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Outcome is the terminal state of one webhook delivery.
type Outcome string

const (
	OutcomeIgnored     Outcome = "ignored"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeBlocked     Outcome = "blocked"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeProcessed   Outcome = "processed"
	OutcomeError       Outcome = "error"
)

const slowDownText = "⏳ You're sending messages too quickly. Please wait a minute and try again."

type WebhookResult struct {
	Outcome   Outcome
	MessageID string
	Flow      string
	Sent      int
	Err       error // set when Outcome is OutcomeError
}

type WebhookService struct {
	verifier *SignatureVerifier
	dedup    *Deduplicator
	limiter  *RateLimiter
	users    interfaces.UserStore
	flow     *BotFlow
	gateway  *OutboundGateway
	audit    *MessageLogger
	logger   zerolog.Logger
	now      func() time.Time
}

func NewWebhookService(
	verifier *SignatureVerifier,
	dedup *Deduplicator,
	limiter *RateLimiter,
	users interfaces.UserStore,
	flow *BotFlow,
	gateway *OutboundGateway,
	audit *MessageLogger,
	logger zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		verifier: verifier,
		dedup:    dedup,
		limiter:  limiter,
		users:    users,
		flow:     flow,
		gateway:  gateway,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleWebhook runs one delivery through the pipeline. The only error it
// returns is entities.ErrInvalidSignature; every other failure is reported
// through the result so the caller can still acknowledge the delivery.
func (s *WebhookService) HandleWebhook(ctx context.Context, body []byte, signature string) (WebhookResult, error) {
	if err := s.verifier.Verify(body, signature); err != nil {
		metrics.WebhookOutcomes.WithLabelValues("invalid_signature").Inc()
		s.logger.Warn().Msg("rejected webhook with invalid signature")
		return WebhookResult{}, err
	}

	msg := ExtractMessage(body)
	if msg == nil {
		metrics.WebhookOutcomes.WithLabelValues(string(OutcomeIgnored)).Inc()
		return WebhookResult{Outcome: OutcomeIgnored}, nil
	}

	// Once claimed the message runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	res := s.safeProcess(ctx, msg)
	res.MessageID = msg.MessageID

	s.audit.LogInbound(ctx, msg, string(res.Outcome))
	metrics.WebhookOutcomes.WithLabelValues(string(res.Outcome)).Inc()

	event := s.logger.Info()
	if res.Err != nil {
		event = s.logger.Error().Err(res.Err)
	}
	event.
		Str("sender", msg.SenderID).
		Str("message_id", msg.MessageID).
		Str("kind", string(msg.Kind)).
		Str("preview", truncateRunes(msg.Preview(), 60)).
		Time("sent_at", msg.SentAt).
		Str("outcome", string(res.Outcome)).
		Str("flow", res.Flow).
		Int("sent", res.Sent).
		Msg("webhook handled")

	return res, nil
}

// safeProcess turns a panic anywhere in the pipeline into OutcomeError so the
// delivery is still acknowledged.
func (s *WebhookService) safeProcess(ctx context.Context, msg *entities.InboundMessage) (res WebhookResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("message_id", msg.MessageID).
				Bytes("stack", debug.Stack()).
				Msg("panic in webhook pipeline")
			res = failed(fmt.Errorf("panic: %v", r))
		}
	}()
	return s.process(ctx, msg)
}

func (s *WebhookService) process(ctx context.Context, msg *entities.InboundMessage) WebhookResult {
	now := s.now().UTC()

	claimed, err := s.dedup.Claim(ctx, msg, now)
	if err != nil {
		return failed(err)
	}
	if !claimed {
		return WebhookResult{Outcome: OutcomeDuplicate}
	}

	user, err := s.users.GetUser(ctx, msg.SenderID)
	if err != nil {
		return failed(fmt.Errorf("get user: %w", err))
	}
	if user != nil && user.IsBlocked {
		return WebhookResult{Outcome: OutcomeBlocked}
	}

	if decision := s.limiter.Check(ctx, msg.SenderID, now); !decision.Allowed {
		metrics.RateLimitRejections.Inc()
		res := WebhookResult{Outcome: OutcomeRateLimited}
		if err := s.gateway.Send(ctx, msg.SenderID, entities.TextReply(slowDownText)); err != nil {
			s.logger.Warn().Err(err).Str("sender", msg.SenderID).Msg("failed to send slow down notice")
		} else {
			res.Sent = 1
		}
		return res
	}

	if _, err := s.users.UpsertUser(ctx, msg.SenderID, msg.ProfileName, now); err != nil {
		s.logger.Warn().Err(err).Str("sender", msg.SenderID).Msg("failed to upsert user")
	}

	flow, replies, err := s.flow.Dispatch(ctx, msg, now)
	metrics.FlowDispatches.WithLabelValues(flow.String()).Inc()
	if err != nil {
		res := failed(err)
		res.Flow = flow.String()
		return res
	}

	res := WebhookResult{Outcome: OutcomeProcessed, Flow: flow.String()}
	for _, reply := range replies {
		if err := s.gateway.Send(ctx, msg.SenderID, reply); err != nil {
			res.Outcome = OutcomeError
			res.Err = fmt.Errorf("send %s reply: %w", reply.Kind, err)
			return res
		}
		res.Sent++
	}
	return res
}

func failed(err error) WebhookResult {
	return WebhookResult{Outcome: OutcomeError, Err: err}
}
