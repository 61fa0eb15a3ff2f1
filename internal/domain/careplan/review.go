package careplan

import (
	"encoding/json"
	"fmt"
)

// Verdict is the outcome recorded when a problem is reviewed.
type Verdict string

const (
	VerdictMaintained         Verdict = "maintained"
	VerdictSatisfied          Verdict = "satisfied"
	VerdictPartiallySatisfied Verdict = "partially_satisfied"
	VerdictNeedsImprovement   Verdict = "needs_improvement"
)

var validVerdicts = map[Verdict]bool{
	VerdictMaintained: true, VerdictSatisfied: true,
	VerdictPartiallySatisfied: true, VerdictNeedsImprovement: true,
}

// OutcomeReview is either unreviewed or reviewed with a verdict. The
// zero value is unreviewed.
type OutcomeReview struct {
	reviewed bool
	verdict  Verdict
}

// Unreviewed returns the unset review state.
func Unreviewed() OutcomeReview { return OutcomeReview{} }

// ReviewedAs returns a review carrying the given verdict.
func ReviewedAs(v Verdict) OutcomeReview {
	return OutcomeReview{reviewed: true, verdict: v}
}

// IsReviewed reports whether a verdict has been recorded.
func (o OutcomeReview) IsReviewed() bool { return o.reviewed }

// Verdict returns the recorded verdict; ok is false when unreviewed.
func (o OutcomeReview) Verdict() (Verdict, bool) { return o.verdict, o.reviewed }

// Toggle applies a verdict selection. Selecting the verdict already
// recorded clears the review back to unreviewed; selecting a different
// verdict replaces it directly without passing through the unreviewed
// state.
func (o OutcomeReview) Toggle(v Verdict) OutcomeReview {
	if o.reviewed && o.verdict == v {
		return Unreviewed()
	}
	return ReviewedAs(v)
}

// MarshalJSON encodes a reviewed state as its verdict string and the
// unreviewed state as null.
func (o OutcomeReview) MarshalJSON() ([]byte, error) {
	if !o.reviewed {
		return []byte("null"), nil
	}
	return json.Marshal(string(o.verdict))
}

// UnmarshalJSON accepts null (unreviewed) or a verdict string.
func (o *OutcomeReview) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Unreviewed()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Verdict(s)
	if !validVerdicts[v] {
		return fmt.Errorf("invalid verdict: %s", s)
	}
	*o = ReviewedAs(v)
	return nil
}

// ReviewSummary aggregates per-problem review state for one plan. A plan
// without problems reports NoProblems; callers must branch on it before
// computing any percentage.
type ReviewSummary struct {
	Reviewed   int  `json:"reviewed"`
	Pending    int  `json:"pending"`
	Total      int  `json:"total"`
	NoProblems bool `json:"no_problems"`
}

// ReviewStatus derives the aggregate completion state of a problem set.
func ReviewStatus(problems []*CarePlanProblem) ReviewSummary {
	if len(problems) == 0 {
		return ReviewSummary{NoProblems: true}
	}
	s := ReviewSummary{Total: len(problems)}
	for _, p := range problems {
		if p.Outcome.IsReviewed() {
			s.Reviewed++
		} else {
			s.Pending++
		}
	}
	return s
}

// BulkReview records the same verdict on every problem in one action.
// Problems already carrying that verdict keep it; bulk review never
// toggles a matching problem back to unreviewed.
func BulkReview(problems []*CarePlanProblem, v Verdict) {
	for _, p := range problems {
		p.Outcome = ReviewedAs(v)
	}
}
