package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStorage struct {
	values    map[string]string
	available bool
}

func newMapStorage() *mapStorage {
	return &mapStorage{values: map[string]string{}, available: true}
}

func (m *mapStorage) Available() bool { return m.available }

func (m *mapStorage) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mapStorage) Set(key, value string) { m.values[key] = value }
func (m *mapStorage) Remove(key string)     { delete(m.values, key) }

func (m *mapStorage) Take(key string) (string, bool) {
	v, ok := m.values[key]
	delete(m.values, key)
	return v, ok
}

// takeOnlyStorage fails the test if Take falls back to Get and Remove, which
// would lose a Set landing between the two calls.
type takeOnlyStorage struct {
	*mapStorage
	t *testing.T
}

func (s takeOnlyStorage) Get(key string) (string, bool) {
	s.t.Errorf("Get(%q) called during Take", key)
	return s.mapStorage.Get(key)
}

func (s takeOnlyStorage) Remove(key string) {
	s.t.Errorf("Remove(%q) called during Take", key)
	s.mapStorage.Remove(key)
}

func TestTrackerSaveGetClear(t *testing.T) {
	tracker := NewTracker(newMapStorage())

	assert.Nil(t, tracker.Get())

	tracker.Save("/roadmap/step/2")
	require.NotNil(t, tracker.Get())
	assert.Equal(t, "/roadmap/step/2", *tracker.Get())
	assert.Equal(t, "/roadmap/step/2", *tracker.Get(), "get does not clear")

	tracker.Clear()
	assert.Nil(t, tracker.Get())
}

func TestTrackerOverwritesSingleSlot(t *testing.T) {
	tracker := NewTracker(newMapStorage())

	tracker.Save("/roadmap/step/1")
	tracker.Save("/roadmap/step/4")
	assert.Equal(t, "/roadmap/step/4", *tracker.Take())
	assert.Nil(t, tracker.Take())
}

func TestTrackerTakeUsesSingleStorageOperation(t *testing.T) {
	backing := newMapStorage()
	NewTracker(backing).Save("/roadmap/step/1")

	tracker := NewTracker(takeOnlyStorage{mapStorage: backing, t: t})
	taken := tracker.Take()
	require.NotNil(t, taken)
	assert.Equal(t, "/roadmap/step/1", *taken)
	assert.Nil(t, tracker.Take())
}

func TestTrackerSaveResult(t *testing.T) {
	tracker := NewTracker(newMapStorage())

	assert.False(t, tracker.WasSuccessful())
	assert.Nil(t, tracker.GetLastSaveTime())

	at := time.Date(2025, 5, 4, 10, 30, 0, 123000000, time.UTC)
	tracker.RecordSaveResult(true, at)
	assert.True(t, tracker.WasSuccessful())
	require.NotNil(t, tracker.GetLastSaveTime())
	assert.True(t, at.Equal(*tracker.GetLastSaveTime()))

	tracker.RecordSaveResult(false, at.Add(time.Minute))
	assert.False(t, tracker.WasSuccessful())
	assert.True(t, at.Add(time.Minute).Equal(*tracker.GetLastSaveTime()))
}

func TestTrackerIgnoresCorruptSaveSlot(t *testing.T) {
	storage := newMapStorage()
	tracker := NewTracker(storage)

	for _, raw := range []string{"garbage", "12|maybe", "x|true"} {
		storage.values[lastSaveKey] = raw
		assert.False(t, tracker.WasSuccessful(), raw)
		assert.Nil(t, tracker.GetLastSaveTime(), raw)
	}
}

func TestTrackerWithoutStorageIsNoop(t *testing.T) {
	unavailable := newMapStorage()
	unavailable.available = false

	for name, tracker := range map[string]*Tracker{
		"nil tracker": nil,
		"nil storage": NewTracker(nil),
		"unavailable": NewTracker(unavailable),
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				tracker.Save("/roadmap/step/1")
				assert.Nil(t, tracker.Get())
				tracker.Clear()
				assert.Nil(t, tracker.Take())
				tracker.RecordSaveResult(true, time.Now())
				assert.False(t, tracker.WasSuccessful())
				assert.Nil(t, tracker.GetLastSaveTime())
			})
		})
	}
	assert.Empty(t, unavailable.values)
}
