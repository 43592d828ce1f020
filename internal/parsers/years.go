package parsers

import "time"

// InferYears assigns years to the incomplete dates in an ordered sequence
// of parse results, returning a fully resolved date per input.
//
// The sequence must be in original file order, which marketplace exports
// run from most recent to oldest. Scanning in that direction, a month
// number that increases relative to the previous row means a year boundary
// was crossed backward, so the working year is decremented. A candidate
// that still lands in the future relative to now is pushed back one more
// year. This is a heuristic tied to the newest-first export convention;
// callers disable it (see ImportConfig.AssumeNewestFirst) when the
// ordering cannot be trusted.
//
// The function is deterministic for a given (parsed, now) pair and keeps
// no state between calls, so concurrent imports never observe each other.
func InferYears(parsed []ParsedDate, now time.Time) []time.Time {
	results := make([]time.Time, 0, len(parsed))
	currentYear := now.Year()
	var lastMonth time.Month // zero means no row seen yet

	for _, p := range parsed {
		switch {
		case p.Resolved != nil:
			results = append(results, *p.Resolved)
			currentYear = p.Resolved.Year()
			lastMonth = p.Resolved.Month()

		case p.NeedsYearInference:
			month, day := p.MonthDay.Month, p.MonthDay.Day

			if lastMonth != 0 && month > lastMonth {
				currentYear--
			}

			candidate := time.Date(currentYear, month, day, 0, 0, 0, 0, time.UTC)
			if candidate.After(now) {
				currentYear--
				candidate = time.Date(currentYear, month, day, 0, 0, 0, 0, time.UTC)
			}

			results = append(results, candidate)
			lastMonth = month

		default:
			// Terminal parse failures are discarded upstream; emit now as a
			// last-resort fallback if one slips through.
			results = append(results, now)
		}
	}

	return results
}
