package service

import (
	"math"

	"github.com/petwell/petwell/internal/model"
)

// personalShare is the slot fraction reserved for personal results when any
// exist. The remainder goes to shared knowledge before backfill.
const personalShare = 0.6

// Blend merges two independently ranked lists into one list of at most k
// items. Personal results come first, then shared, each in original rank
// order. When one side cannot fill its quota the other side's unused head
// backfills, shared before personal. Overlapping content between the two
// corpora is not de-duplicated; the corpora are expected to be disjoint.
func Blend(personal, shared []model.ScoredDocument, k int) []model.ScoredDocument {
	if k <= 0 {
		return nil
	}
	if len(personal) == 0 {
		n := len(shared)
		if n > k {
			n = k
		}
		return append([]model.ScoredDocument(nil), shared[:n]...)
	}

	personalSlots := int(math.Ceil(float64(k) * personalShare))
	sharedSlots := k - personalSlots

	pUsed := personalSlots
	if pUsed > len(personal) {
		pUsed = len(personal)
	}
	sUsed := sharedSlots
	if sUsed > len(shared) {
		sUsed = len(shared)
	}

	out := make([]model.ScoredDocument, 0, k)
	out = append(out, personal[:pUsed]...)
	out = append(out, shared[:sUsed]...)

	for _, doc := range shared[sUsed:] {
		if len(out) >= k {
			break
		}
		out = append(out, doc)
	}
	for _, doc := range personal[pUsed:] {
		if len(out) >= k {
			break
		}
		out = append(out, doc)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}
