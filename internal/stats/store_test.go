package stats

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-analyzer/internal/models"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func record(playerID, gameID int, first, last, minutes string, points float64) models.GameStatRecord {
	return models.GameStatRecord{
		PlayerID:  playerID,
		FirstName: first,
		LastName:  last,
		GameID:    gameID,
		Minutes:   models.ParseMinutes(minutes),
		Points:    points,
	}
}

func TestNewStore(t *testing.T) {
	records := []models.GameStatRecord{
		record(1, 30, "Luka", "Doncic", "35:00", 30),
		record(1, 10, "Luka", "Doncic", "36:00", 28),
		record(2, 10, "Kyrie", "Irving", "--", 0),
		record(1, 20, "Luka", "Doncic", "-", 0),
		record(1, 10, "Luka", "Doncic", "36:00", 99), // duplicate identity
		{PlayerID: 0, LastName: "Nobody", GameID: 5}, // invalid
	}

	store := NewStore(records, testLogger())

	assert.Equal(t, 4, store.Len())
	assert.Equal(t, 2, store.Rejected())
	assert.Equal(t, []string{"Kyrie Irving", "Luka Doncic"}, store.Players())

	ps, err := store.Series("Luka Doncic")
	require.NoError(t, err)

	recs := ps.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{recs[0].GameID, recs[1].GameID, recs[2].GameID})
	assert.Equal(t, 2, ps.GamesPlayed())

	values, minutes := ps.Values(models.StatPoints)
	assert.Equal(t, []float64{28, 30}, values)
	assert.Equal(t, []float64{36, 35}, minutes)
}

func TestNewStoreSingleNamePlayers(t *testing.T) {
	store := NewStore([]models.GameStatRecord{
		record(1, 1, "Nene", "", "20:00", 8),
		record(2, 1, "", "Hilario", "20:00", 8),
		record(3, 1, "", "  ", "20:00", 8),
	}, nil)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.Rejected())
	assert.Equal(t, []string{"Hilario", "Nene"}, store.Players())

	_, err := store.Series("Nene")
	assert.NoError(t, err)
}

func TestStoreSeriesExactMatch(t *testing.T) {
	store := NewStore([]models.GameStatRecord{record(1, 1, "Luka", "Doncic", "30:00", 20)}, nil)

	_, err := store.Series("luka doncic")
	assert.True(t, errors.Is(err, models.ErrUnresolvedPlayer))

	_, err = store.Series("Luka  Doncic")
	assert.True(t, errors.Is(err, models.ErrUnresolvedPlayer))

	_, err = store.Series("Luka Doncic")
	assert.NoError(t, err)
}

func TestStoreFingerprint(t *testing.T) {
	base := []models.GameStatRecord{
		record(1, 10, "Luka", "Doncic", "36:00", 28),
		record(2, 10, "Kyrie", "Irving", "30:00", 20),
	}
	a := NewStore(base, nil)
	b := NewStore([]models.GameStatRecord{base[1], base[0]}, nil)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	changed := append([]models.GameStatRecord(nil), base...)
	changed[0].Points = 29
	c := NewStore(changed, nil)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	luka, err := a.Series("Luka Doncic")
	require.NoError(t, err)
	kyrie, err := c.Series("Kyrie Irving")
	require.NoError(t, err)
	kyrieBefore, err := a.Series("Kyrie Irving")
	require.NoError(t, err)
	lukaAfter, err := c.Series("Luka Doncic")
	require.NoError(t, err)
	assert.Equal(t, kyrieBefore.Fingerprint(), kyrie.Fingerprint())
	assert.NotEqual(t, luka.Fingerprint(), lukaAfter.Fingerprint())
}

func TestSeriesStableOrderOnTies(t *testing.T) {
	a := record(1, 5, "A", "B", "10:00", 1)
	b := record(1, 5, "A", "B", "10:00", 2)
	b.PlayerID = 2 // same name, distinct identity
	store := NewStore([]models.GameStatRecord{a, b}, nil)

	ps, err := store.Series("A B")
	require.NoError(t, err)
	values, _ := ps.Values(models.StatPoints)
	assert.Equal(t, []float64{1, 2}, values)
}
