package message

// Timestamp is a point in time in milliseconds relative to the engine start.
type Timestamp float64

// Add returns the timestamp shifted by ms milliseconds.
func (t Timestamp) Add(ms float64) Timestamp {
	return t + Timestamp(ms)
}
