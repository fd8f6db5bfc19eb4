package location

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once     sync.Once
	location *time.Location
)

// Location is the zone from settings.timezone, used for history timestamps
// and daily stats. Unknown or empty zones fall back to UTC.
func Location() *time.Location {
	once.Do(func() {
		loc, err := time.LoadLocation(viper.GetString("settings.timezone"))
		if err != nil {
			loc = time.UTC
		}
		location = loc
	})
	return location
}

// StartOfDay returns midnight of t's day in Location.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location())
}
