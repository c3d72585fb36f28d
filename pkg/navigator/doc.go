// Package navigator drives one respondent through a rendered form.
//
// A Session starts in Active(0). Advance validates the current step, commits
// its visible answers and classifies them; any disqualifying answer ends the
// session in Disqualified, otherwise the last step ends it in Completed.
// Both end states absorb every further transition. Submit delivers the
// aggregated record from Completed and may be retried after a transport
// failure without re-asking questions.
//
// Sessions share nothing; build one per respondent.
package navigator
