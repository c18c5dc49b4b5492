package model

// Stats summarizes the full run-log history.
type Stats struct {
	TotalReports    int            `json:"total_reports"`
	Succeeded       int            `json:"succeeded"`
	Failed          int            `json:"failed"`
	SuccessRate     float64        `json:"success_rate"`
	TotalComponents int            `json:"total_components"`
	ByProject       []ProjectCount `json:"by_project"`
	ByDay           []DayCount     `json:"by_day"`
}

// ProjectCount is the number of reports generated for one project.
type ProjectCount struct {
	Project string `json:"project"`
	Reports int    `json:"reports"`
}

// DayCount is the number of reports generated on one UTC day.
type DayCount struct {
	Day     string `json:"day"` // YYYY-MM-DD
	Reports int    `json:"reports"`
}
