package stats

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/yourusername/prop-analyzer/internal/models"
)

// fingerprint hashes every field of records in order. Equal record sequences
// always hash equally, across processes too.
func fingerprint(records []models.GameStatRecord) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 160)
	for i := range records {
		r := &records[i]
		buf = buf[:0]
		for _, n := range []int{r.PlayerID, r.GameID, r.TeamID, r.Season} {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(n))
		}
		minutes, present := r.Minutes.Value()
		if present {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		for _, f := range []float64{minutes, r.Points, r.Rebounds, r.Assists, r.Blocks, r.Steals, r.Turnovers, r.ThreesMade} {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		buf = append(buf, r.FirstName...)
		buf = append(buf, 0)
		buf = append(buf, r.LastName...)
		buf = append(buf, 0)
		buf = append(buf, r.TeamCode...)
		buf = append(buf, 0)
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// combine folds per-series fingerprints into one store fingerprint
func combine(names []string, series map[string]*PlayerStatSeries) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, name := range names {
		_, _ = d.WriteString(name)
		binary.LittleEndian.PutUint64(buf[:], series[name].fingerprint)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
