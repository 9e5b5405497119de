// Package stats normalizes per-game box score records into per-player series.
package stats

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-analyzer/internal/models"
)

type recordKey struct {
	playerID int
	gameID   int
}

// Store is a read-only index of historical records keyed by player full name.
// It is safe for concurrent readers once built.
type Store struct {
	series      map[string]*PlayerStatSeries
	names       []string
	records     int
	rejected    int
	fingerprint uint64
}

// NewStore validates and indexes records. Invalid records and repeated
// (player id, game id) pairs are logged and dropped.
func NewStore(records []models.GameStatRecord, log *logrus.Entry) *Store {
	v := validator.New()
	s := &Store{series: make(map[string]*PlayerStatSeries)}
	seen := make(map[recordKey]struct{}, len(records))

	for i := range records {
		rec := records[i]
		if err := ValidateRecord(v, &rec); err != nil {
			s.rejected++
			if log != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"player_id": rec.PlayerID,
					"game_id":   rec.GameID,
				}).Debug("Rejected stat record")
			}
			continue
		}

		key := recordKey{playerID: rec.PlayerID, gameID: rec.GameID}
		if _, dup := seen[key]; dup {
			s.rejected++
			continue
		}
		seen[key] = struct{}{}

		name := rec.FullName()
		ps, ok := s.series[name]
		if !ok {
			ps = &PlayerStatSeries{Name: name, PlayerID: rec.PlayerID}
			s.series[name] = ps
			s.names = append(s.names, name)
		}
		ps.records = append(ps.records, rec)
		s.records++
	}

	for _, ps := range s.series {
		sort.SliceStable(ps.records, func(i, j int) bool {
			return ps.records[i].GameID < ps.records[j].GameID
		})
		ps.fingerprint = fingerprint(ps.records)
	}
	sort.Strings(s.names)
	s.fingerprint = combine(s.names, s.series)

	if log != nil {
		log.WithFields(logrus.Fields{
			"records":  s.records,
			"players":  len(s.names),
			"rejected": s.rejected,
		}).Info("Stat record store built")
	}

	return s
}

// ValidateRecord checks a record's struct tags and that it carries a name
// props can match
func ValidateRecord(v *validator.Validate, rec *models.GameStatRecord) error {
	if err := v.Struct(rec); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRecord, err)
	}
	if rec.FullName() == "" {
		return fmt.Errorf("%w: player %d has no name", models.ErrInvalidRecord, rec.PlayerID)
	}
	return nil
}

// Series resolves a player by exact, case-sensitive full name
func (s *Store) Series(name string) (*PlayerStatSeries, error) {
	ps, ok := s.series[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnresolvedPlayer, name)
	}
	return ps, nil
}

// Players returns every player name in sorted order
func (s *Store) Players() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of accepted records
func (s *Store) Len() int {
	return s.records
}

// Fingerprint identifies the accepted records. Stores built from the same
// records share a fingerprint; any changed value changes it.
func (s *Store) Fingerprint() uint64 {
	return s.fingerprint
}

// Rejected returns the number of records dropped during ingestion
func (s *Store) Rejected() int {
	return s.rejected
}
