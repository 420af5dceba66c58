package metrics

// ResultLabel enumerates transition outcomes for counters.
type ResultLabel string

const (
	ResultCommitted ResultLabel = "committed"
	ResultRejected  ResultLabel = "rejected"
	ResultCanceled  ResultLabel = "canceled"
	ResultNoop      ResultLabel = "noop"
)

// Recorder defines observability hooks for the control core. NoopRecorder
// is used when nothing is injected.
type Recorder interface {
	IncControlTransition(control string, result ResultLabel)
	IncPersistFailure(key string)
	IncSnapshotWrite()
	SetUnviewedNotifications(role string, n int)
}

type NoopRecorder struct{}

func (NoopRecorder) IncControlTransition(string, ResultLabel) {}
func (NoopRecorder) IncPersistFailure(string)                 {}
func (NoopRecorder) IncSnapshotWrite()                        {}
func (NoopRecorder) SetUnviewedNotifications(string, int)     {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
