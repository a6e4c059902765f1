package export

import (
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/databuilder/internal/errors"
)

// RunReport aggregates the statistics and the error ledger of one export
// run. It is always populated, whatever the outcome.
type RunReport struct {
	RunID     string    `json:"run_id"`
	Target    string    `json:"target"`
	Exporter  string    `json:"exporter"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	FilesWritten    int `json:"files_written"`
	StaticPages     int `json:"static_pages"`
	IndexArtifacts  int `json:"index_artifacts"`
	DetailArtifacts int `json:"detail_artifacts"`
	NavArtifacts    int `json:"nav_artifacts"`
	EntitiesSkipped int `json:"entities_skipped"`

	Groups map[string]*GroupStats `json:"groups"`
	Errors []LedgerEntry          `json:"errors,omitempty"`
}

// GroupStats counts one group's artifacts and failures.
type GroupStats struct {
	DetailArtifacts int  `json:"detail_artifacts"`
	IndexWritten    bool `json:"index_written"`
	Skipped         int  `json:"skipped"`
	Errors          int  `json:"errors"`
}

// LedgerEntry is one data-class failure recorded instead of raised.
type LedgerEntry struct {
	Group    string `json:"group,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Phase    string `json:"phase"` // static_page, group, index, detail
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// ledgerEntry shapes an error into a ledger entry, classifying it by its
// structured category.
func ledgerEntry(group, entityID, phase string, err error) LedgerEntry {
	return LedgerEntry{
		Group:    group,
		EntityID: entityID,
		Phase:    phase,
		Category: string(errors.GetCategory(err)),
		Message:  err.Error(),
	}
}

func newRunReport(target, exporter string) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		Target:    target,
		Exporter:  exporter,
		StartedAt: time.Now().UTC(),
		Groups:    make(map[string]*GroupStats),
	}
}

func (r *RunReport) group(name string) *GroupStats {
	if r.Groups[name] == nil {
		r.Groups[name] = &GroupStats{}
	}
	return r.Groups[name]
}

// Record appends a ledger entry and bumps the group's error count.
func (r *RunReport) Record(entry LedgerEntry) {
	r.Errors = append(r.Errors, entry)
	if entry.Group != "" {
		r.group(entry.Group).Errors++
	}
}

// ErrorCount returns the number of recorded data-class errors.
func (r *RunReport) ErrorCount() int {
	return len(r.Errors)
}
