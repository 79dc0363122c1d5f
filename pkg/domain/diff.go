package domain

// SnapshotDiff represents the changes between two snapshots of the same session.
// It is designed to be serialized to JSON for incremental updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// States holds states appended since the old snapshot.
	States []StateRecord `json:"states,omitempty"`

	// Solutions holds results reported since the old snapshot.
	Solutions []SolutionRecord `json:"solutions,omitempty"`

	// Exhausted is set when the exhaustion flag changed.
	Exhausted *bool `json:"exhausted,omitempty"`
}

// IsEmpty reports whether the diff carries no change.
func (d *SnapshotDiff) IsEmpty() bool {
	return d == nil || (len(d.States) == 0 && len(d.Solutions) == 0 && d.Exhausted == nil)
}

// Diff calculates the difference between oldSnap and newSnap.
// Search graphs only grow, so the diff is the appended suffix of states and solutions.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}

	oldStates, oldSolutions := 0, 0
	oldExhausted := false
	if oldSnap != nil {
		oldStates = len(oldSnap.States)
		oldSolutions = len(oldSnap.Solutions)
		oldExhausted = oldSnap.Exhausted
	}

	if len(newSnap.States) > oldStates {
		diff.States = append([]StateRecord(nil), newSnap.States[oldStates:]...)
	}
	if len(newSnap.Solutions) > oldSolutions {
		diff.Solutions = append([]SolutionRecord(nil), newSnap.Solutions[oldSolutions:]...)
	}
	if (oldSnap == nil && newSnap.Exhausted) || (oldSnap != nil && oldExhausted != newSnap.Exhausted) {
		exhausted := newSnap.Exhausted
		diff.Exhausted = &exhausted
	}

	return diff
}
