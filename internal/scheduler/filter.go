package scheduler

import (
	"fmt"

	"mastery-scheduler/internal/models"
)

// BatchItem is one scheduled exercise along with its manifest.
type BatchItem struct {
	ExerciseID string                  `json:"exercise_id"`
	Manifest   models.ExerciseManifest `json:"manifest"`
}

// candidateFilter shapes the raw candidate list into the final batch using
// the mastery windows from the scheduler options.
type candidateFilter struct {
	data *Data
	rng  *lockedRand
}

// candidatesInWindow returns the candidates whose score falls in the window.
func candidatesInWindow(candidates []candidate, lo, hi float64) []candidate {
	var in []candidate
	for _, c := range candidates {
		if lo <= c.score && c.score < hi {
			in = append(in, c)
		}
	}
	return in
}

// selectCandidates randomly picks numSelected candidates without replacement.
// Selection is weighted by score and search depth: lower scores and deeper
// discoveries are preferred. It returns the selected candidates and the
// remainder.
func (f *candidateFilter) selectCandidates(candidates []candidate, numSelected int) ([]candidate, []candidate) {
	if numSelected <= 0 {
		return nil, candidates
	}
	if len(candidates) <= numSelected {
		return candidates, nil
	}

	pool := make([]candidate, len(candidates))
	copy(pool, candidates)
	weights := make([]float64, len(pool))
	var total float64
	for i, c := range pool {
		weights[i] = 1.0 + (5.0 - c.score) + float64(c.numHops)
		total += weights[i]
	}

	selected := make([]candidate, 0, numSelected)
	for len(selected) < numSelected {
		target := f.rng.float64() * total
		chosen := len(pool) - 1
		for i, w := range weights {
			target -= w
			if target < 0 {
				chosen = i
				break
			}
		}

		selected = append(selected, pool[chosen])
		total -= weights[chosen]
		pool[chosen] = pool[len(pool)-1]
		weights[chosen] = weights[len(weights)-1]
		pool = pool[:len(pool)-1]
		weights = weights[:len(weights)-1]
	}
	return selected, pool
}

// addRemainder tops up the final candidates from a window's unused remainder
// when the batch is not yet full.
func addRemainder(batchSize int, finalCandidates []candidate, remainder []candidate) []candidate {
	if len(finalCandidates) >= batchSize {
		return finalCandidates
	}
	missing := batchSize - len(finalCandidates)
	if missing > len(remainder) {
		missing = len(remainder)
	}
	return append(finalCandidates, remainder[:missing]...)
}

// filterCandidates partitions the candidates into the mastery windows,
// samples each window's share of the batch, maps the picks to their
// manifests, and shuffles the result so presentation order does not leak the
// window classification.
func (f *candidateFilter) filterCandidates(candidates []candidate) ([]BatchItem, error) {
	options := f.data.Options
	batchSize := float64(options.BatchSize)

	easyCandidates := candidatesInWindow(
		candidates, options.EasyWindow.Lo, options.EasyWindow.Hi)
	currentCandidates := candidatesInWindow(
		candidates, options.CurrentWindow.Lo, options.CurrentWindow.Hi)
	targetCandidates := candidatesInWindow(
		candidates, options.TargetWindow.Lo, options.TargetWindow.Hi)

	var finalCandidates []candidate

	numEasy := int(batchSize * options.EasyWindow.Percentage)
	easySelected, easyRemainder := f.selectCandidates(easyCandidates, numEasy)
	finalCandidates = append(finalCandidates, easySelected...)

	numCurrent := int(batchSize * options.CurrentWindow.Percentage)
	currentSelected, currentRemainder := f.selectCandidates(currentCandidates, numCurrent)
	finalCandidates = append(finalCandidates, currentSelected...)

	// The target window takes whatever is left of the batch to compensate
	// for floor truncation in the other windows.
	numTarget := options.BatchSize - len(finalCandidates)
	targetSelected, _ := f.selectCandidates(targetCandidates, numTarget)
	finalCandidates = append(finalCandidates, targetSelected...)

	// Top up from the remainders in descending order of difficulty if the
	// batch still has room.
	finalCandidates = addRemainder(options.BatchSize, finalCandidates, currentRemainder)
	finalCandidates = addRemainder(options.BatchSize, finalCandidates, easyRemainder)

	return f.candidatesToBatch(finalCandidates)
}

// candidatesToBatch resolves each candidate's manifest and shuffles the
// batch. A missing manifest fails the whole batch call.
func (f *candidateFilter) candidatesToBatch(candidates []candidate) ([]BatchItem, error) {
	batch := make([]BatchItem, 0, len(candidates))
	for _, c := range candidates {
		manifest, ok := f.data.Library.ExerciseManifest(c.exerciseID)
		if !ok {
			return nil, fmt.Errorf("exercise %s: %w", c.exerciseID, ErrManifestMissing)
		}
		batch = append(batch, BatchItem{ExerciseID: c.exerciseID, Manifest: manifest})
	}
	f.rng.shuffleBatch(batch)
	return batch, nil
}
