package logging

import (
	"github.com/h9-tec/qiraat-engine/core/qiraat"
)

// Domain event helpers. Keeping the attribute sets here means every
// caller logs the same shape for the same event.

// CoverageIssue reports one lineage's audit finding at warn level when
// something is off, debug otherwise.
func CoverageIssue(cov *qiraat.LineageCoverage) {
	args := []any{
		"lineage", cov.Lineage,
		"status", string(cov.Status),
		"found", cov.Found,
		"expected", cov.Expected,
		"missing_surahs", len(cov.MissingSurahs),
		"incomplete_surahs", len(cov.Incomplete),
	}
	if cov.Orphan {
		args = append(args, "orphan", true)
	}
	if cov.Status == qiraat.CoverageOK {
		Debug("lineage coverage", args...)
		return
	}
	Warn("lineage coverage issue", args...)
}

// StoreFailure reports the one fatal error class.
func StoreFailure(err error) {
	Error("store failure", "error", err)
}
