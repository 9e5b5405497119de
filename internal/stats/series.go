package stats

import "github.com/yourusername/prop-analyzer/internal/models"

// PlayerStatSeries is one player's records in chronological (game id) order
type PlayerStatSeries struct {
	Name     string
	PlayerID int
	records  []models.GameStatRecord

	fingerprint uint64
}

// NewSeries builds a series from records already in chronological order
func NewSeries(name string, records []models.GameStatRecord) *PlayerStatSeries {
	cp := make([]models.GameStatRecord, len(records))
	copy(cp, records)
	ps := &PlayerStatSeries{Name: name, records: cp, fingerprint: fingerprint(cp)}
	if len(cp) > 0 {
		ps.PlayerID = cp[0].PlayerID
	}
	return ps
}

// Fingerprint identifies the series' records
func (ps *PlayerStatSeries) Fingerprint() uint64 {
	return ps.fingerprint
}

// Records returns a copy of every record, played or not
func (ps *PlayerStatSeries) Records() []models.GameStatRecord {
	out := make([]models.GameStatRecord, len(ps.records))
	copy(out, ps.records)
	return out
}

// Played returns the records with present, positive minutes
func (ps *PlayerStatSeries) Played() []models.GameStatRecord {
	out := make([]models.GameStatRecord, 0, len(ps.records))
	for _, rec := range ps.records {
		if rec.Minutes.Played() {
			out = append(out, rec)
		}
	}
	return out
}

// GamesPlayed counts games passing the did-not-play rule
func (ps *PlayerStatSeries) GamesPlayed() int {
	n := 0
	for _, rec := range ps.records {
		if rec.Minutes.Played() {
			n++
		}
	}
	return n
}

// Values returns the stat values and minutes of played games, chronologically
func (ps *PlayerStatSeries) Values(st models.StatType) (values, minutes []float64) {
	played := ps.Played()
	values = make([]float64, len(played))
	minutes = make([]float64, len(played))
	for i := range played {
		values[i] = played[i].Value(st)
		minutes[i] = played[i].Minutes.Float()
	}
	return values, minutes
}
