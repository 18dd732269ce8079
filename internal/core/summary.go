package core

// CategoryTotal is an amount aggregated under one category.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Total      float64
}

// PeriodTotal is an amount aggregated under one period bucket. The key format
// depends on the requested granularity: "2024-06-03" for days, "2024-06" for
// months, "2024" for years.
type PeriodTotal struct {
	Period string
	Total  float64
}

// MonthOverview is a compact summary of a user's month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      float64
	ByCategory []CategoryTotal
}
