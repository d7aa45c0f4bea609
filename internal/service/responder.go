package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/model"
)

// Query subjects handled by the responder. The chat gateway translates
// commands and button callbacks into requests on these subjects and
// relays the reply text back to the user.
const (
	querySubjectPrefix = "bot.query."

	QuerySubjectPayments  = querySubjectPrefix + "payments"
	QuerySubjectCalendar  = querySubjectPrefix + "calendar"
	QuerySubjectEvents    = querySubjectPrefix + "events"
	QuerySubjectContacts  = querySubjectPrefix + "contacts"
	QuerySubjectCareers   = querySubjectPrefix + "careers"
	QuerySubjectAdmission = querySubjectPrefix + "admission"
	QuerySubjectStatus    = querySubjectPrefix + "status"
)

// StatusFunc reports the scheduler's job statuses for the status query.
type StatusFunc func() []model.JobStatus

// Responder answers interactive queries over NATS request/reply.
type Responder struct {
	logger  *zap.Logger
	nc      *nats.Conn
	queries *QueryService
	status  StatusFunc
	sub     *nats.Subscription
}

// NewResponder creates a responder.
func NewResponder(nc *nats.Conn, queries *QueryService, status StatusFunc, logger *zap.Logger) *Responder {
	return &Responder{
		logger:  logger.Named("responder"),
		nc:      nc,
		queries: queries,
		status:  status,
	}
}

// Start subscribes to the query subjects. The subscription is dropped
// when the context is cancelled.
func (r *Responder) Start(ctx context.Context) error {
	sub, err := r.nc.Subscribe(querySubjectPrefix+">", func(msg *nats.Msg) {
		reply := r.handle(ctx, msg.Subject, string(msg.Data))
		if err := msg.Respond([]byte(reply)); err != nil {
			r.logger.Error("Failed to respond to query",
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to queries: %w", err)
	}
	r.sub = sub

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	r.logger.Info("Responder started", zap.String("subject", querySubjectPrefix+">"))
	return nil
}

// handle routes one query to its formatter. Unknown subjects get the
// generic unavailability message.
func (r *Responder) handle(ctx context.Context, subject, arg string) string {
	r.logger.Info("Handling query",
		zap.String("subject", subject),
		zap.String("arg", arg))

	switch subject {
	case QuerySubjectPayments:
		return r.queries.UpcomingPayments(ctx)
	case QuerySubjectCalendar:
		return r.queries.AcademicCalendar(ctx)
	case QuerySubjectEvents:
		return r.queries.WeekEvents(ctx)
	case QuerySubjectContacts:
		return r.queries.Contacts(ctx, strings.TrimSpace(arg))
	case QuerySubjectCareers:
		return r.queries.Careers(ctx)
	case QuerySubjectAdmission:
		return r.queries.AdmissionRequirements(ctx)
	case QuerySubjectStatus:
		data, err := json.Marshal(r.status())
		if err != nil {
			r.logger.Error("Failed to marshal job status", zap.Error(err))
			return UnavailableMessage
		}
		return string(data)
	default:
		return UnavailableMessage
	}
}
