package reminder

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/cache"
	"github.com/t77yq/campus-bot/internal/model"
	"github.com/t77yq/campus-bot/internal/notify"
)

const (
	// DateLayout is the calendar-date format used by the spreadsheet.
	DateLayout = "2006-01-02"

	// DefaultHorizonDays bounds how far ahead a record counts as urgent.
	DefaultHorizonDays = 7
)

// Upcoming is one record whose date falls within the reminder horizon.
type Upcoming struct {
	Record   model.Record
	Date     time.Time
	DaysLeft int
}

// UpcomingWithin filters records down to those whose date field parses
// and falls between today and horizon days from now, sorted ascending
// by date. Records with malformed dates are silently excluded.
func UpcomingWithin(records []model.Record, dateField string, horizon int, now time.Time) []Upcoming {
	today := midnight(now)

	var upcoming []Upcoming
	for _, record := range records {
		date, err := time.ParseInLocation(DateLayout, record.Get(dateField), now.Location())
		if err != nil {
			continue
		}

		// Rounding keeps whole-day math stable across DST shifts.
		days := int(math.Round(date.Sub(today).Hours() / 24))
		if days < 0 || days > horizon {
			continue
		}

		upcoming = append(upcoming, Upcoming{
			Record:   record,
			Date:     date,
			DaysLeft: days,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})

	return upcoming
}

// Dispatcher computes urgent subsets of cached data and fans reminder
// messages out to a fixed recipient list.
type Dispatcher struct {
	logger     *zap.Logger
	cache      *cache.Cache
	sender     notify.Sender
	recipients []string
	horizon    int
	now        func() time.Time
}

// New creates a dispatcher. The recipient set is fixed for the process
// lifetime.
func New(c *cache.Cache, sender notify.Sender, recipients []string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logger:     logger.Named("reminder"),
		cache:      c,
		sender:     sender,
		recipients: recipients,
		horizon:    DefaultHorizonDays,
		now:        time.Now,
	}
}

// Broadcast sends the message to every recipient independently. One
// recipient's delivery failure is logged and does not abort the rest.
// The returned count is of intended recipients, not confirmed
// deliveries; confirmation is not tracked.
func (d *Dispatcher) Broadcast(ctx context.Context, text string) int {
	runID := uuid.New().String()
	chunks := notify.SplitMessage(text, notify.MaxMessageLength)

	for _, recipient := range d.recipients {
		for _, chunk := range chunks {
			if err := d.sender.Send(ctx, recipient, chunk); err != nil {
				d.logger.Error("Failed to send to recipient",
					zap.String("run_id", runID),
					zap.String("chat_id", recipient),
					zap.Error(err))
				break
			}
		}
	}

	d.logger.Info("Broadcast dispatched",
		zap.String("run_id", runID),
		zap.Int("recipients", len(d.recipients)),
		zap.Int("chunks", len(chunks)))

	return len(d.recipients)
}

// SendPaymentReminders is the daily reminder job body: payments due
// within the horizon are formatted and broadcast. Nothing is sent when
// no payment is due.
func (d *Dispatcher) SendPaymentReminders(ctx context.Context) error {
	records := d.cache.Get(ctx, model.TablePayments)

	urgent := UpcomingWithin(records, FieldDate, d.horizon, d.now())
	if len(urgent) == 0 {
		d.logger.Info("No payments due within horizon",
			zap.Int("horizon_days", d.horizon))
		return nil
	}

	d.Broadcast(ctx, PaymentReminderText(urgent))
	return nil
}

// SendWeeklyEvents is the weekly reminder job body: events in the
// coming week are formatted and broadcast.
func (d *Dispatcher) SendWeeklyEvents(ctx context.Context) error {
	records := d.cache.Get(ctx, model.TableEvents)

	upcoming := UpcomingWithin(records, FieldDate, d.horizon, d.now())
	if len(upcoming) == 0 {
		d.logger.Info("No events in the coming week")
		return nil
	}

	d.Broadcast(ctx, WeeklyEventsText(upcoming))
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
