package model

// Record represents one row of a spreadsheet table as a mapping from
// column name to cell value. The schema comes from the table's header
// row at fetch time; it is not declared in advance.
type Record map[string]string

// Logical tables backed by the remote spreadsheet. The set is fixed:
// each constant names one sheet in the university workbook.
const (
	TablePayments  = "payments"
	TableCalendar  = "calendar"
	TableEvents    = "events"
	TableCareers   = "careers"
	TableAdmission = "admission"
	TableContacts  = "contacts"
)

// Get returns the value of the named field, or empty string if the
// record has no such column.
func (r Record) Get(field string) string {
	return r[field]
}
