package engine

// Anniversary is a named yearly recurring date rendered into the calendar feed.
type Anniversary struct {
	// Name appears in the event summary.
	Name string

	// Date is the original date; only its month and day recur.
	Date CalendarDate
}
