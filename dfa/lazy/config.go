package lazy

// Config tunes the superstate cache.
//
// The byte budget trades memory for speed: a small budget makes the
// engine degrade from DFA speed into cache-miss handling under pressure,
// never into wrong answers.
type Config struct {
	// ByteBudget is the upper bound on cache memory, in estimated bytes.
	// Reclamation keeps usage within one superstate of this bound.
	//
	// Default: 1 MiB, roughly 125 superstates at the default alphabet.
	ByteBudget int

	// CSetSize is the alphabet size. Transition tables have one cell per
	// alphabet value.
	//
	// Default: 256.
	CSetSize int
}

// DefaultConfig returns the defaults described on each field.
func DefaultConfig() Config {
	return Config{
		ByteBudget: 1 << 20,
		CSetSize:   256,
	}
}
