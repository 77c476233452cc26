package domain

// Stats summarizes stored entries of a chat
type Stats struct {
	ChatID   string
	Total    int
	ByKind   map[SurveyKind]int
	Day      string
	Averages []MetricAverage
}

// MetricAverage is the mean of a scale question over one day
type MetricAverage struct {
	Key     string
	Prompt  string
	Average float64
	Samples int
}
