package session

import (
	"github.com/nao1215/filingctl/internal/expansion"
	"github.com/nao1215/filingctl/internal/model"
	"github.com/nao1215/filingctl/internal/notice"
	"github.com/nao1215/filingctl/internal/operation"
	"github.com/nao1215/filingctl/internal/report"
)

// Snapshot is a copy of the session state for rendering. Fields are read
// one at a time, not under a single lock.
type Snapshot struct {
	Single    operation.State[model.Result]
	Batch     operation.State[[]model.Result]
	LookupID  operation.State[model.Result]
	LookupURL operation.State[[]model.Result]
	FetchAll  operation.State[[]model.Result]
	DeleteOne operation.State[struct{}]
	DeleteAll operation.State[struct{}]

	// Results is the shared result collection in order.
	Results []model.Result

	Notices  []notice.Notice
	Columns  report.Columns
	Template model.Template
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Single:    s.single.State(),
		Batch:     s.batch.State(),
		LookupID:  s.lookupID.State(),
		LookupURL: s.lookupURL.State(),
		FetchAll:  s.fetchAll.State(),
		DeleteOne: s.mutations.DeleteOneState(),
		DeleteAll: s.mutations.DeleteAllState(),
		Results:   s.results.Snapshot(),
		Notices:   s.notices.List(),
		Columns:   s.Columns(),
		Template:  s.Template(),
	}
}

// View builds the report view of results in table with the session's
// expansion state and column toggles.
func (s *Session) View(table expansion.Table, results []model.Result) report.View {
	return report.View{
		Results:   results,
		Expansion: s.expansion.Table(table),
		Columns:   s.Columns(),
	}
}

// AllView is the view of the shared result collection.
func (s *Session) AllView() report.View {
	return s.View(expansion.TableAll, s.results.Snapshot())
}
