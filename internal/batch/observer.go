package batch

// Observer receives progress events from a Runner. Implementations must be
// safe for concurrent use: OnFileDone may be called from several workers.
type Observer interface {
	OnStart(runID string, total int)
	OnFileDone(idx, total int, o Outcome)
	OnFinish(r *Report)
}

type multiObserver []Observer

func (m multiObserver) OnStart(runID string, total int) {
	for _, o := range m {
		o.OnStart(runID, total)
	}
}

func (m multiObserver) OnFileDone(idx, total int, out Outcome) {
	for _, o := range m {
		o.OnFileDone(idx, total, out)
	}
}

func (m multiObserver) OnFinish(r *Report) {
	for _, o := range m {
		o.OnFinish(r)
	}
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnStart(string, int)          {}
func (NopObserver) OnFileDone(int, int, Outcome) {}
func (NopObserver) OnFinish(*Report)             {}
