package ledger

// OutcomeStatus classifies what an apply or reverse call did. Deliberate
// no-ops are outcomes, not errors: the engine runs as a side-effecting step
// inside larger workflows that already validated preconditions, so a missing
// record or unknown type silently skips rather than failing the workflow.
type OutcomeStatus string

const (
	StatusApplied              OutcomeStatus = "applied"
	StatusReversed             OutcomeStatus = "reversed"
	StatusSkippedUnknownType   OutcomeStatus = "skipped_unknown_type"
	StatusSkippedMissingRecord OutcomeStatus = "skipped_missing_record"
)

// Outcome reports the result of an apply or reverse call so callers and
// tests can distinguish "no-op because the companion was missing" from
// "no-op because a referenced record was deleted".
type Outcome struct {
	Status OutcomeStatus `json:"status"`

	// SkipReason names the missing precondition for skipped statuses.
	SkipReason string `json:"skip_reason,omitempty"`

	// CompanionID is set when a companion transaction was resolved and
	// processed as part of the same atomic unit.
	CompanionID string `json:"companion_id,omitempty"`

	// RealizedGain is populated for applied Sell transactions with the
	// gain persisted onto the transaction record.
	RealizedGain float64 `json:"realized_gain"`
}

// Skipped reports whether the call was a deliberate no-op.
func (o Outcome) Skipped() bool {
	return o.Status == StatusSkippedUnknownType || o.Status == StatusSkippedMissingRecord
}

// ReverseOptions controls reversal side effects.
type ReverseOptions struct {
	// PreserveRecords keeps the holding, insurance detail, and asset rows
	// created by an insurance transaction instead of deleting them. Used
	// by the edit-in-place flow, which reverses and immediately reapplies.
	PreserveRecords bool
}
