package bcdomain

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotchance/pie/v2"
)

const (
	hashTimeRounding     = 5 * time.Minute
	hashDurationRounding = 10
)

// ContentHash fingerprints the game a replay records so that the same game
// uploaded by several players hashes equally. It combines the game time
// rounded to 5 minutes, the duration rounded to 10 seconds, the map, the
// sorted player names and both goal totals. Collisions are not detected.
func ContentHash(r Replay) uint64 {
	played := r.Date
	if played.IsZero() {
		played = r.Created
	}
	duration := (r.Duration + hashDurationRounding/2) / hashDurationRounding * hashDurationRounding

	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	write(strconv.FormatInt(played.UTC().Round(hashTimeRounding).Unix(), 10))
	write(strconv.Itoa(duration))
	write(r.MapCode)
	for _, name := range pie.Sort(r.PlayerNames()) {
		write(name)
	}
	write(strconv.Itoa(r.Blue.Goals))
	write(strconv.Itoa(r.Orange.Goals))
	return d.Sum64()
}
