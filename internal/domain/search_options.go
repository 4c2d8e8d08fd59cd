package domain

// SessionFilter represents search criteria for sessions. Days are inclusive
// YYYY-MM-DD start-day buckets. A zero Limit means no limit.
type SessionFilter struct {
	StartDay *string
	EndDay   *string
	TaskID   *int64
	AppName  *string
	Limit    int
}
