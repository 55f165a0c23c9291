package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// persistSession saves the mutated session through the guard, best-effort. A
// degraded session store loses this transition but never blocks the reply.
func persistSession(ctx context.Context, store ports.SessionStore, timeout time.Duration, sess *domain.Session, log zerolog.Logger) {
	res := Guard(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, store.Save(ctx, sess)
	})
	if !res.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("session_save", res.Outcome.String()).Inc()
		log.Warn().Err(res.Err).Str("phone", sess.Phone).Msg("session save degraded")
	}
}

// isSkip reports whether the input is an explicit skip keyword.
func isSkip(s string) bool {
	switch s {
	case "skip", "no", "na", "છોડો":
		return true
	}
	return false
}

// idExcerpt shortens a record id to the prefix shown in confirmations.
func idExcerpt(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
