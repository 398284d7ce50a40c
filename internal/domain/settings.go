package domain

type GlobalSettings struct {
	DefaultTimeZone string `json:"default_time_zone"` // IANA zone
	WeekStart       int32  `json:"week_start"`        // 0=Sunday .. 6=Saturday, display only
	Use24h          bool   `json:"use_24h"`
}
