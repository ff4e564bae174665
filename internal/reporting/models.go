package reporting

// AdherenceSummary aggregates reminder outcomes for one calendar day.
// Pending counts sessions that have not reached a terminal status yet;
// they are excluded from the adherence rate denominator.
type AdherenceSummary struct {
	Date string `json:"date"`

	TotalCalls int `json:"total_calls"`
	Taken      int `json:"taken"`
	Missed     int `json:"missed"`
	NoAnswer   int `json:"no_answer"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`

	AdherenceRate float64 `json:"adherence_rate"`
}
