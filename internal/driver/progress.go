package driver

// Stage names the pass a file is in; it matches the timer and trace names.
type Stage string

const (
	StageParse       Stage = "parse"
	StageMarkers     Stage = "markers"
	StageSplit       Stage = "split"
	StageReconstruct Stage = "reconstruct"
	StageCheck       Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one file. Stage is empty for queued, done and
// error events.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: directory runs report from every worker.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func (p *pipeline) progress(file string, stage Stage, status Status) {
	if p.opts.Progress == nil {
		return
	}
	p.opts.Progress.OnEvent(Event{File: file, Stage: stage, Status: status})
}
