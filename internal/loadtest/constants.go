package loadtest

// Request kinds.
const (
	KindStaying = "staying"
	KindLeaving = "leaving"
	KindValid   = "valid"
	KindInvalid = "invalid"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
)
