package domain

import (
	"fmt"
	"time"
)

const cycleLayout = "2006010215"

// InitTime is a GFS model cycle (00, 06, 12 or 18 UTC).
type InitTime struct {
	t time.Time
}

// ParseInitTime parses a YYYYMMDDHH cycle string.
func ParseInitTime(s string) (InitTime, error) {
	t, err := time.ParseInLocation(cycleLayout, s, time.UTC)
	if err != nil {
		return InitTime{}, fmt.Errorf("parse init time %q: want YYYYMMDDHH", s)
	}
	if t.Hour()%6 != 0 {
		return InitTime{}, fmt.Errorf("parse init time %q: hour must be 00, 06, 12 or 18", s)
	}
	return InitTime{t: t}, nil
}

// NewInitTime truncates t to the enclosing 6-hourly cycle.
func NewInitTime(t time.Time) InitTime {
	t = t.UTC()
	return InitTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour()-t.Hour()%6, 0, 0, 0, time.UTC)}
}

// LatestCycle returns the newest cycle at or before now minus lag. The lag
// accounts for the delay between a cycle's nominal time and its data being
// available.
func LatestCycle(lag time.Duration) InitTime {
	return NewInitTime(clock.Now().Add(-lag))
}

func (i InitTime) String() string {
	if i.t.IsZero() {
		return ""
	}
	return i.t.Format(cycleLayout)
}

// Time returns the cycle as a UTC time.
func (i InitTime) Time() time.Time { return i.t }

// Hour returns the cycle hour.
func (i InitTime) Hour() int { return i.t.Hour() }

// IsZero reports whether the init time is unset.
func (i InitTime) IsZero() bool { return i.t.IsZero() }

// ValidTime returns the time a forecast hour verifies at.
func (i InitTime) ValidTime(fh int) time.Time {
	return i.t.Add(time.Duration(fh) * time.Hour)
}

// Valid returns the verifying time of forecast hour fh as YYYYMMDDHH.
func (i InitTime) Valid(fh int) string {
	return i.ValidTime(fh).Format(cycleLayout)
}

// AnalysisFile is the name of the analysis file for a cycle.
func AnalysisFile(i InitTime) string {
	return fmt.Sprintf("analysis_gfs_4_%s_%02d00_000.nc", i.t.Format("20060102"), i.Hour())
}

// ForecastFile is the name of the multi-step forecast file for a cycle.
func ForecastFile(i InitTime) string {
	return fmt.Sprintf("GFS_forecast_%s_%02d.nc", i.t.Format("20060102"), i.Hour())
}

// Step is one forecast time in a forecast file: the position along the
// file's time dimension and the forecast hour it holds.
type Step struct {
	Index int
	Hour  int
}

// DefaultForecastHours is the forecast hour list used when the namelist has
// no fore entry: 3 to 72 in 3-hour steps.
func DefaultForecastHours() []int {
	hours := make([]int, 0, 24)
	for h := 3; h <= 72; h += 3 {
		hours = append(hours, h)
	}
	return hours
}

// ForecastSteps pairs each forecast hour with its position in the file.
func ForecastSteps(fore []int) []Step {
	steps := make([]Step, len(fore))
	for i, h := range fore {
		steps[i] = Step{Index: i, Hour: h}
	}
	return steps
}

// heatLowHour is the valid hour at which the Saharan heat low is deepest.
const heatLowHour = 6

// HeatLowSteps selects the first two positive forecast hours that verify at
// 06 UTC. With 3-hourly output this is 6/30 for 00Z, 24/48 for 06Z, 18/42
// for 12Z and 12/36 for 18Z.
func HeatLowSteps(init InitTime, fore []int) []Step {
	var steps []Step
	for i, h := range fore {
		if h <= 0 || init.ValidTime(h).Hour() != heatLowHour {
			continue
		}
		steps = append(steps, Step{Index: i, Hour: h})
		if len(steps) == 2 {
			break
		}
	}
	return steps
}
