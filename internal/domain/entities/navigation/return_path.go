package navigation

import (
	"strconv"
	"strings"
	"time"
)

const (
	returnPathKey = "fundroad:return-path"
	lastSaveKey   = "fundroad:last-save"
)

// Storage is a string-keyed durable slot store. Implementations report through
// Available whether a backend exists at all; the tracker checks it before every
// access. Take must read and remove a key atomically with respect to Set.
type Storage interface {
	Available() bool
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
	Take(key string) (string, bool)
}

// Tracker remembers the last non-resource path a user was on and the outcome of
// the last resource save. It keeps exactly one value per slot: saving a second
// return path before the first is consumed overwrites it.
type Tracker struct {
	storage Storage
}

// NewTracker creates a tracker over storage. A nil storage is allowed.
func NewTracker(storage Storage) *Tracker {
	return &Tracker{storage: storage}
}

func (t *Tracker) available() bool {
	return t != nil && t.storage != nil && t.storage.Available()
}

// Save overwrites the return path.
func (t *Tracker) Save(path string) {
	if !t.available() {
		return
	}
	t.storage.Set(returnPathKey, path)
}

// Get reads the return path without clearing it; nil when unset.
func (t *Tracker) Get() *string {
	if !t.available() {
		return nil
	}
	path, ok := t.storage.Get(returnPathKey)
	if !ok {
		return nil
	}
	return &path
}

// Clear forgets the return path.
func (t *Tracker) Clear() {
	if !t.available() {
		return
	}
	t.storage.Remove(returnPathKey)
}

// Take reads and clears the return path in one storage operation; nil when unset.
func (t *Tracker) Take() *string {
	if !t.available() {
		return nil
	}
	path, ok := t.storage.Take(returnPathKey)
	if !ok {
		return nil
	}
	return &path
}

// RecordSaveResult stores the outcome of the latest save.
func (t *Tracker) RecordSaveResult(success bool, at time.Time) {
	if !t.available() {
		return
	}
	t.storage.Set(lastSaveKey, strconv.FormatInt(at.UnixMilli(), 10)+"|"+strconv.FormatBool(success))
}

// WasSuccessful reports whether the last recorded save succeeded.
func (t *Tracker) WasSuccessful() bool {
	_, success, ok := t.lastSave()
	return ok && success
}

// GetLastSaveTime returns nil when no save was recorded.
func (t *Tracker) GetLastSaveTime() *time.Time {
	at, _, ok := t.lastSave()
	if !ok {
		return nil
	}
	return &at
}

func (t *Tracker) lastSave() (time.Time, bool, bool) {
	if !t.available() {
		return time.Time{}, false, false
	}
	raw, ok := t.storage.Get(lastSaveKey)
	if !ok {
		return time.Time{}, false, false
	}
	millis, flag, found := strings.Cut(raw, "|")
	if !found {
		return time.Time{}, false, false
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return time.Time{}, false, false
	}
	success, err := strconv.ParseBool(flag)
	if err != nil {
		return time.Time{}, false, false
	}
	return time.UnixMilli(ms).UTC(), success, true
}
