package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/cache"
	"github.com/t77yq/campus-bot/internal/model"
	"github.com/t77yq/campus-bot/internal/reminder"
)

// UnavailableMessage is what an interactive query reports when its
// table cannot be served. Internal failure detail never reaches users.
const UnavailableMessage = "❌ This information is unavailable right now. Please try again later."

const (
	// interactive payment listings look a year ahead, unlike reminders
	paymentLookaheadDays = 365
	maxPaymentRows       = 8
)

// QueryService formats cached tables into reply text for the chat
// gateway. It holds no state of its own; the cache owns the data.
type QueryService struct {
	logger *zap.Logger
	cache  *cache.Cache
	now    func() time.Time
}

// NewQueryService creates a query service over the cache.
func NewQueryService(c *cache.Cache, logger *zap.Logger) *QueryService {
	return &QueryService{
		logger: logger.Named("query"),
		cache:  c,
		now:    time.Now,
	}
}

// UpcomingPayments lists scheduled payments from today onward.
func (s *QueryService) UpcomingPayments(ctx context.Context) string {
	records := s.cache.Get(ctx, model.TablePayments)
	upcoming := reminder.UpcomingWithin(records, reminder.FieldDate, paymentLookaheadDays, s.now())
	if len(upcoming) == 0 {
		return UnavailableMessage
	}

	var b strings.Builder
	b.WriteString("💰 Upcoming payments\n\n")
	for i, u := range upcoming {
		if i == maxPaymentRows {
			fmt.Fprintf(&b, "...and %d more\n", len(upcoming)-maxPaymentRows)
			break
		}
		fmt.Fprintf(&b, "📅 %s (%s)\n", u.Date.Format("02/01/2006"), reminder.FormatDays(u.DaysLeft))
		fmt.Fprintf(&b, "💳 %s\n", u.Record.Get(reminder.FieldConcept))
		if amount := u.Record.Get(reminder.FieldAmount); amount != "" {
			fmt.Fprintf(&b, "💵 $%s\n", amount)
		}
		b.WriteString("\n")
	}
	b.WriteString("Use /payments any time to see this list again.")
	return b.String()
}

// WeekEvents lists events within the coming week.
func (s *QueryService) WeekEvents(ctx context.Context) string {
	records := s.cache.Get(ctx, model.TableEvents)
	upcoming := reminder.UpcomingWithin(records, reminder.FieldDate, reminder.DefaultHorizonDays, s.now())
	if len(upcoming) == 0 {
		return UnavailableMessage
	}
	return reminder.WeeklyEventsText(upcoming)
}

// AcademicCalendar lists the academic calendar milestones.
func (s *QueryService) AcademicCalendar(ctx context.Context) string {
	records := s.cache.Get(ctx, model.TableCalendar)
	if len(records) == 0 {
		return UnavailableMessage
	}

	var b strings.Builder
	b.WriteString("📅 Academic calendar\n\n")
	for _, record := range records {
		fmt.Fprintf(&b, "• %s — %s\n", record.Get(reminder.FieldDate), record.Get(reminder.FieldDescription))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Contacts lists contacts, optionally filtered by campus.
func (s *QueryService) Contacts(ctx context.Context, campus string) string {
	records := s.cache.Get(ctx, model.TableContacts)
	if len(records) == 0 {
		return UnavailableMessage
	}

	var b strings.Builder
	b.WriteString("📞 Contacts\n\n")
	matched := 0
	for _, record := range records {
		if campus != "" && !strings.EqualFold(record.Get("campus"), campus) {
			continue
		}
		matched++
		fmt.Fprintf(&b, "• %s — %s\n", record.Get("name"), record.Get("role"))
		if phone := record.Get("phone"); phone != "" {
			fmt.Fprintf(&b, "  ☎️ %s\n", phone)
		}
		if email := record.Get("email"); email != "" {
			fmt.Fprintf(&b, "  ✉️ %s\n", email)
		}
	}
	if matched == 0 {
		return fmt.Sprintf("No contacts found for campus %q.", campus)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Careers lists the available degree programs.
func (s *QueryService) Careers(ctx context.Context) string {
	records := s.cache.Get(ctx, model.TableCareers)
	if len(records) == 0 {
		return UnavailableMessage
	}

	var b strings.Builder
	b.WriteString("🎓 Degree programs\n\n")
	for _, record := range records {
		fmt.Fprintf(&b, "• %s", record.Get("name"))
		if faculty := record.Get("faculty"); faculty != "" {
			fmt.Fprintf(&b, " (%s)", faculty)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// AdmissionRequirements lists admission requirements by category.
func (s *QueryService) AdmissionRequirements(ctx context.Context) string {
	records := s.cache.Get(ctx, model.TableAdmission)
	if len(records) == 0 {
		return UnavailableMessage
	}

	var b strings.Builder
	b.WriteString("📋 Admission requirements\n\n")
	for _, record := range records {
		fmt.Fprintf(&b, "• %s: %s\n", record.Get("category"), record.Get("requirement"))
	}
	return strings.TrimRight(b.String(), "\n")
}
