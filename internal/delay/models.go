package delay

// Rental is one row of the rentals export. Delay and previous-rental fields
// are nullable in the source data: delay is only known for ended rentals,
// and the previous-rental link only exists when the same car had another
// rental within 12 hours before checkin.
type Rental struct {
	ID                   int64
	CarID                int64
	CheckinType          string
	State                string
	CheckoutDelayMin     *float64
	PreviousRentalID     *int64
	MinutesSincePrevious *float64
}

// Summary is the dataset card shown in the dashboard sidebar.
type Summary struct {
	TotalRentals        int `json:"total_rentals"`
	ConnectRentals      int `json:"connect_rentals"`
	MobileRentals       int `json:"mobile_rentals"`
	CanceledRentals     int `json:"canceled_rentals"`
	WithPreviousRental  int `json:"with_previous_rental"`
}

// HistogramBucket is one bar of a distribution chart.
type HistogramBucket struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// Overview answers the "how often are drivers late and how does it hurt the
// next driver" questions.
type Overview struct {
	ConsecutiveRentals  int     `json:"consecutive_rentals"`
	LateReturns         int     `json:"late_returns"`
	LateReturnRate      float64 `json:"late_return_rate"`
	AvgLateDelayMin     float64 `json:"avg_late_delay_minutes"`
	ProblemCases        int     `json:"problem_cases"`
	ProblemRate         float64 `json:"problem_rate"`
	AvgWaitTimeMin      float64 `json:"avg_wait_time_minutes"`
	DelayCancellations  int     `json:"delay_cancellations"`
	EarlyReturns        int     `json:"early_returns"`
	OnTimeReturns       int     `json:"on_time_returns"`
	LateReturnsTotal    int     `json:"late_returns_total"`
	LateDelayHistogram  []HistogramBucket `json:"late_delay_histogram"`
	WaitTimeHistogram   []HistogramBucket `json:"wait_time_histogram"`
}

// ThresholdMetrics quantifies a candidate minimum-gap threshold: how many
// rentals it would have blocked, how many of today's delay problems it
// would have solved, and the availability cost.
type ThresholdMetrics struct {
	ThresholdMin        float64 `json:"threshold_minutes"`
	Scope               string  `json:"scope"`
	TotalRentals        int     `json:"total_rentals"`
	RentalsWithPrevious int     `json:"rentals_with_previous"`
	BlockedRentals      int     `json:"blocked_rentals"`
	BlockedPercentage   float64 `json:"blocked_percentage"`
	CurrentProblems     int     `json:"current_problems"`
	ProblemsSolved      int     `json:"problems_solved"`
	SolveEfficiency     float64 `json:"solve_efficiency"`
	AvailabilityImpact  float64 `json:"availability_impact"`
}
