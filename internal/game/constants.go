package game

import "time"

const (
	TickRateHz = 20

	DefaultDayLength = 60 * time.Second
	DefaultTotalDays = 5

	// GrassPerSheepPerDay is the survival quota: a sheep that eats fewer
	// grass units than this in one day starves at day end.
	GrassPerSheepPerDay = 3

	GrassInitialHealth = 3

	StartAckTimeout = 3 * time.Second

	// MaxTickDelta clamps per-tick elapsed time so a stalled scheduler
	// cannot produce one giant simulation step when it resumes.
	MaxTickDelta = 250 * time.Millisecond

	DefaultGrassCount = 24
	DefaultPenCount   = 4
)
