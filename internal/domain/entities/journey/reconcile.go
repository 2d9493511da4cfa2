package journey

type substepRecordKey struct {
	stepID int
	title  string
}

// Reconcile overlays persisted completion flags onto a copy of the static steps.
// A record always wins over the static default; without a record the static value
// is kept. Substeps are matched on (step id, title) by exact string equality, so
// a title differing only in case, whitespace or accent encoding does not match.
func Reconcile(static []Step, stepRecords []StepCompletionRecord, substepRecords []SubstepCompletionRecord) []Step {
	steps := CloneSteps(static)
	if len(stepRecords) == 0 && len(substepRecords) == 0 {
		return steps
	}

	stepFlags := make(map[int]bool, len(stepRecords))
	for _, rec := range stepRecords {
		stepFlags[rec.StepID] = rec.Completed
	}

	substepFlags := make(map[substepRecordKey]bool, len(substepRecords))
	for _, rec := range substepRecords {
		substepFlags[substepRecordKey{stepID: rec.StepID, title: rec.SubstepTitle}] = rec.Completed
	}

	for i := range steps {
		if completed, ok := stepFlags[steps[i].ID]; ok {
			steps[i].IsCompleted = completed
		}
		for j := range steps[i].SubSteps {
			key := substepRecordKey{stepID: steps[i].ID, title: steps[i].SubSteps[j].Title}
			if completed, ok := substepFlags[key]; ok {
				steps[i].SubSteps[j].IsCompleted = completed
			}
		}
	}

	return steps
}

// BuildView reconciles and aggregates in one pass.
func BuildView(static []Step, stepRecords []StepCompletionRecord, substepRecords []SubstepCompletionRecord) View {
	steps := Reconcile(static, stepRecords, substepRecords)
	return View{
		Steps:    steps,
		Progress: CalculateProgress(steps),
	}
}
