package trackers

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/samuelfneumann/qlambda/timestep"
)

// episode returns the TimeSteps of an episode with the given rewards
// after the first step
func episode(rewards ...float64) []ts.TimeStep {
	steps := []ts.TimeStep{ts.New(ts.First, 0, 1, nil, nil, 0)}
	for i, r := range rewards {
		stepType := ts.Mid
		if i == len(rewards)-1 {
			stepType = ts.Last
		}
		step := ts.New(stepType, r, 1, nil, nil, i+1)
		if stepType == ts.Last {
			step.SetEnd(ts.TerminalStateReached)
		}
		steps = append(steps, step)
	}
	return steps
}

func track(t *testing.T, tracker Tracker, steps ...[]ts.TimeStep) {
	t.Helper()
	for _, ep := range steps {
		for _, step := range ep {
			require.NoError(t, tracker.Track(step))
		}
	}
}

func TestReturn(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(filename)

	track(t, r, episode(-1, -1, 5), episode(2))
	assert.Equal(t, []float64{3, 2}, r.Returns())

	require.NoError(t, r.Save())
	data, err := LoadData(filename)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2}, data)
}

func TestReturnNonSequential(t *testing.T) {
	r := NewReturn("")
	require.NoError(t, r.Track(ts.New(ts.First, 0, 1, nil, nil, 0)))
	assert.Error(t, r.Track(ts.New(ts.Mid, 0, 1, nil, nil, 2)))
}

func TestEpisodeLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	e := NewEpisodeLength(filename)

	track(t, e, episode(0, 0, 0), episode(1), episode(0, 0))
	assert.Equal(t, []int{3, 1, 2}, e.Lengths())

	require.NoError(t, e.Save())
	data, err := LoadEpisodeLengths(filename)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, data)

	_, err = LoadData(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runID := uuid.New().String()
	s, err := NewSQLite(db, runID, `{"Lambda": 0.9}`)
	require.NoError(t, err)

	track(t, s, episode(-1, 4), episode(-1, -1, -1))

	// Nothing is written before Save
	episodes, err := Episodes(db, runID)
	require.NoError(t, err)
	assert.Empty(t, episodes)

	require.NoError(t, s.Save())
	episodes, err = Episodes(db, runID)
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	assert.Equal(t, Episode{runID, 0, 3, 2, "TerminalStateReached"},
		episodes[0])
	assert.Equal(t, Episode{runID, 1, -3, 3, "TerminalStateReached"},
		episodes[1])

	// Saving again does not duplicate rows
	require.NoError(t, s.Save())
	episodes, err = Episodes(db, runID)
	require.NoError(t, err)
	assert.Len(t, episodes, 2)

	runs, err := Runs(db)
	require.NoError(t, err)
	assert.Equal(t, []string{runID}, runs)

	// Run ids are unique
	_, err = NewSQLite(db, runID, "")
	assert.Error(t, err)
}
