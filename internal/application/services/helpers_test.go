package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/infrastructure/caching/sessions"
	"github.com/fundroad/fundroad-go/internal/infrastructure/content"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

var errOffline = errors.New("network unreachable")

// memoryProgress is an in-memory ProgressRepository with failure and blocking hooks.
type memoryProgress struct {
	mu       sync.Mutex
	steps    map[string]map[int]journey.StepCompletionRecord
	substeps map[string]map[substepRecordKeyForTest]journey.SubstepCompletionRecord

	failReads   error
	failWrites  error
	upsertGate  chan struct{}
	upsertEnter chan struct{}
	readHook    func()
}

type substepRecordKeyForTest struct {
	stepID int
	title  string
}

func newMemoryProgress() *memoryProgress {
	return &memoryProgress{
		steps:    make(map[string]map[int]journey.StepCompletionRecord),
		substeps: make(map[string]map[substepRecordKeyForTest]journey.SubstepCompletionRecord),
	}
}

func (m *memoryProgress) FindStepRecords(ctx context.Context, userID string) ([]journey.StepCompletionRecord, error) {
	if m.readHook != nil {
		m.readHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	var out []journey.StepCompletionRecord
	for _, record := range m.steps[userID] {
		out = append(out, record)
	}
	return out, nil
}

func (m *memoryProgress) FindSubstepRecords(ctx context.Context, userID string) ([]journey.SubstepCompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	var out []journey.SubstepCompletionRecord
	for _, record := range m.substeps[userID] {
		out = append(out, record)
	}
	return out, nil
}

func (m *memoryProgress) UpsertStep(ctx context.Context, record journey.StepCompletionRecord) error {
	m.waitGate()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	if m.steps[record.UserID] == nil {
		m.steps[record.UserID] = make(map[int]journey.StepCompletionRecord)
	}
	m.steps[record.UserID][record.StepID] = record
	return nil
}

func (m *memoryProgress) UpsertSubstep(ctx context.Context, record journey.SubstepCompletionRecord) error {
	m.waitGate()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	if m.substeps[record.UserID] == nil {
		m.substeps[record.UserID] = make(map[substepRecordKeyForTest]journey.SubstepCompletionRecord)
	}
	m.substeps[record.UserID][substepRecordKeyForTest{record.StepID, record.SubstepTitle}] = record
	return nil
}

func (m *memoryProgress) waitGate() {
	if m.upsertEnter != nil {
		m.upsertEnter <- struct{}{}
	}
	if m.upsertGate != nil {
		<-m.upsertGate
	}
}

func (m *memoryProgress) substepRecord(userID string, stepID int, title string) (journey.SubstepCompletionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.substeps[userID][substepRecordKeyForTest{stepID, title}]
	return record, ok
}

type countingToggles struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingToggles) CountToggle(kind string, completed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[kind]++
}

func testCatalog(t *testing.T) *journey.Catalog {
	t.Helper()
	loaded, err := content.Load("")
	require.NoError(t, err)
	return loaded.Catalog
}

func newTestJourneyService(t *testing.T, repo *memoryProgress) *JourneyService {
	t.Helper()
	return NewJourneyService(testCatalog(t), repo, logging.NewDiscardLogger(), nil, nil)
}

func newTestNavigationService() *NavigationService {
	logger := logging.NewDiscardLogger()
	return NewNavigationService(sessions.NewStore(time.Hour, 100, logger), logger)
}
