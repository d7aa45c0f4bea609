package reminder

import (
	"fmt"
	"strings"
)

// Spreadsheet column names shared by the payments and events tables.
const (
	FieldDate        = "date"
	FieldConcept     = "concept"
	FieldAmount      = "amount"
	FieldTitle       = "title"
	FieldLocation    = "location"
	FieldDescription = "description"
)

// maxReminderRows caps how many rows one reminder message lists.
const maxReminderRows = 5

// PaymentReminderText formats the daily payment reminder.
func PaymentReminderText(urgent []Upcoming) string {
	var b strings.Builder

	b.WriteString("💰 Payment reminder\n\n")
	b.WriteString("The following payments are coming up:\n\n")

	for i, u := range urgent {
		if i == maxReminderRows {
			fmt.Fprintf(&b, "...and %d more\n", len(urgent)-maxReminderRows)
			break
		}
		fmt.Fprintf(&b, "📅 %s (%s)\n", u.Date.Format("02/01/2006"), FormatDays(u.DaysLeft))
		fmt.Fprintf(&b, "💳 %s\n", u.Record.Get(FieldConcept))
		if amount := u.Record.Get(FieldAmount); amount != "" {
			fmt.Fprintf(&b, "💵 $%s\n", amount)
		}
		b.WriteString("\n")
	}

	b.WriteString("⚠️ Pay on time to avoid late fees.")
	return b.String()
}

// WeeklyEventsText formats the weekly events reminder.
func WeeklyEventsText(upcoming []Upcoming) string {
	var b strings.Builder

	b.WriteString("📅 Events this week\n\n")

	for _, u := range upcoming {
		fmt.Fprintf(&b, "• %s — %s", u.Date.Format("02/01/2006"), u.Record.Get(FieldTitle))
		if location := u.Record.Get(FieldLocation); location != "" {
			fmt.Fprintf(&b, " (%s)", location)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatDays renders a days-until count as short human text.
func FormatDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
