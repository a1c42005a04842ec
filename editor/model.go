package editor

import (
	"fmt"
	"os"

	"visu"
	"visu/render"
	"visu/script"
)

// Model implements the mutable state of an editing session. It is owned by
// one goroutine (typically the UI loop), while the player and the analyzer
// run in their own goroutines; they communicate through the Broker. All
// segment edits go through the scheduler, so the active-segment bookkeeping
// can never drift from the list.
type (
	// modelData is the part of the model that gets saved to the recovery file
	modelData struct {
		Project visu.Project

		SegIndex         int // the selected segment, or -1
		FilePath         string
		ChangedSinceSave bool

		RecoveryFilePath     string
		ChangedSinceRecovery bool

		Playing      bool
		PlayPosition float64

		PrevUndoKind    string
		UndoSkipCounter int
		UndoStack       []visu.Project
		RedoStack       []visu.Project
	}

	Model struct {
		d modelData

		scheduler *visu.Scheduler
		runner    *script.Runner
		graph     *render.Graph
		signal    *visu.SignalCell
		clip      visu.Clip

		changeLevel    int
		changeCancel   bool
		changeType     ChangeType
		changeSeverity ChangeSeverity
		undoSnapshot   visu.Project

		alerts  []alertEntry
		drag    dragState
		midi    midiState
		quitted bool

		broker *Broker
	}

	ChangeSeverity int
	ChangeType     int
)

const (
	MajorChange ChangeSeverity = iota
	MinorChange
)

const (
	NoChange       ChangeType = 0
	SegmentsChange ChangeType = 1 << iota
	ViewChange
	MediaChange
	ProjectChange = SegmentsChange | ViewChange | MediaChange
)

const maxUndo = 256

// undoSkip tells, per change kind, how many consecutive changes are coalesced
// into one undo step. Code is typed one keystroke at a time; a separate undo
// entry per keystroke would make undo useless.
var undoSkip = map[string]int{
	"SegmentCodeString": 24,
	"AmplitudeFloat":    10,
	"DragSegment":       1 << 30, // a whole gesture is one undo step
}

func NewModel(broker *Broker, midiContext MIDIContext, recoveryFilePath string) *Model {
	m := &Model{
		broker:    broker,
		scheduler: visu.NewScheduler(),
		graph:     render.NewGraph(render.DefaultSize, render.DefaultSize),
		signal:    &visu.SignalCell{},
	}
	m.runner = script.NewRunner(m.graph)
	m.d.Project = visu.NewProject("")
	m.d.SegIndex = -1
	m.d.RecoveryFilePath = recoveryFilePath
	m.midi.context = midiContext
	m.graph.DefaultVisual()
	if recoveryFilePath != "" {
		if data, err := os.ReadFile(recoveryFilePath); err == nil {
			m.UnmarshalRecovery(data)
		}
	}
	return m
}

// change starts a mutation of the model data. It returns a closure that has
// to be called when the mutation is complete; usually deferred:
//
//	defer m.change("AddSegment", SegmentsChange, MajorChange)()
//
// Nested changes are coalesced into the outermost one. Setting changeCancel
// before the closure runs rolls the whole mutation back instead of
// committing it.
func (m *Model) change(kind string, t ChangeType, severity ChangeSeverity) func() {
	if m.changeLevel == 0 {
		m.undoSnapshot = m.d.Project.Copy()
		m.changeCancel = false
		m.changeType = NoChange
		m.changeSeverity = severity
	}
	m.changeLevel++
	m.changeType |= t
	return func() {
		m.changeLevel--
		if m.changeLevel < 0 {
			panic("change() closed more times than it was opened")
		}
		if m.changeLevel > 0 {
			return
		}
		if m.changeCancel {
			m.d.Project = m.undoSnapshot
			m.scheduler.Import(m.d.Project.Segments)
			return
		}
		if m.changeSeverity == MajorChange {
			m.pushUndo(kind)
		}
		if m.changeType&SegmentsChange != 0 {
			m.d.Project.Segments = m.scheduler.Export()
			// the active segment may have changed meaning; re-evaluate at the
			// current position so the visuals catch up without waiting for a
			// position tick
			m.evaluate(m.d.PlayPosition)
		}
		m.d.ChangedSinceSave = true
		m.d.ChangedSinceRecovery = true
	}
}

func (m *Model) pushUndo(kind string) {
	if m.d.PrevUndoKind == kind && undoSkip[kind] > 0 && m.d.UndoSkipCounter < undoSkip[kind] {
		m.d.UndoSkipCounter++
		return
	}
	m.d.PrevUndoKind = kind
	m.d.UndoSkipCounter = 0
	if len(m.d.UndoStack) >= maxUndo {
		m.d.UndoStack = m.d.UndoStack[1:]
	}
	m.d.UndoStack = append(m.d.UndoStack, m.undoSnapshot)
	m.d.RedoStack = m.d.RedoStack[:0]
}

// evaluate recomputes the active segment at time t, runs segment code when
// the active segment changed and steps the render graph one frame. Execution
// errors become alerts; they never stop playback.
func (m *Model) evaluate(t float64) {
	if changed, err := m.scheduler.Evaluate(t, m.runner); changed && err != nil {
		index := m.scheduler.Active()
		if seg, ok := m.scheduler.Segment(index); ok {
			m.Alerts().AddNamed("SegmentError",
				fmt.Sprintf("segment %d [%.1fs - %.1fs]: %v", index, seg.StartTime, seg.EndTime, err),
				Error)
		}
	}
	m.graph.Step(t, m.signal.Load())
}

// ProcessMsg handles one broker message. The UI loop is expected to drain
// broker.ToModel into this between frames.
func (m *Model) ProcessMsg(msg MsgToModel) {
	if msg.HasPosition {
		m.d.PlayPosition = msg.Position
		m.d.Playing = msg.Playing
		m.evaluate(msg.Position)
	}
	switch data := msg.Data.(type) {
	case *visu.AudioBuffer:
		// scope data; the model has no use for it beyond returning the buffer
		m.broker.PutAudioBuffer(data)
	case Alert:
		m.addAlert(data)
	case func():
		data()
	}
}

// Broker returns the broker this model is connected to.
func (m *Model) Broker() *Broker { return m.broker }

// Graph returns the render graph, for a front end to read frames from.
func (m *Model) Graph() *render.Graph { return m.graph }

// SignalCell returns the cell the analyzer publishes snapshots into.
func (m *Model) SignalCell() *visu.SignalCell { return m.signal }

// PlayPosition returns the latest known playback time.
func (m *Model) PlayPosition() float64 { return m.d.PlayPosition }

// Quitted returns true when the session should shut down.
func (m *Model) Quitted() bool { return m.quitted }

// Undo & Redo

func (m *Model) Undo() Action { return MakeAction((*undo)(m)) }

type undo Model

func (m *undo) Enabled() bool { return len(m.d.UndoStack) > 0 }
func (m *undo) Do() {
	if len(m.d.RedoStack) >= maxUndo {
		m.d.RedoStack = m.d.RedoStack[1:]
	}
	m.d.RedoStack = append(m.d.RedoStack, m.d.Project.Copy())
	m.d.Project = m.d.UndoStack[len(m.d.UndoStack)-1]
	m.d.UndoStack = m.d.UndoStack[:len(m.d.UndoStack)-1]
	(*Model)(m).restoreProject()
}

func (m *Model) Redo() Action { return MakeAction((*redo)(m)) }

type redo Model

func (m *redo) Enabled() bool { return len(m.d.RedoStack) > 0 }
func (m *redo) Do() {
	if len(m.d.UndoStack) >= maxUndo {
		m.d.UndoStack = m.d.UndoStack[1:]
	}
	m.d.UndoStack = append(m.d.UndoStack, m.d.Project.Copy())
	m.d.Project = m.d.RedoStack[len(m.d.RedoStack)-1]
	m.d.RedoStack = m.d.RedoStack[:len(m.d.RedoStack)-1]
	(*Model)(m).restoreProject()
}

// restoreProject pushes a project restored from undo, redo or a file into
// the derived state: the scheduler re-imports the segments and the viewport
// is re-clamped in case the data came from a hand-edited file.
func (m *Model) restoreProject() {
	m.scheduler.Import(m.d.Project.Segments)
	m.d.Project.WaveformView.Clamp()
	if m.d.SegIndex >= m.scheduler.Len() {
		m.d.SegIndex = m.scheduler.Len() - 1
	}
	m.d.PrevUndoKind = ""
	m.d.UndoSkipCounter = 0
	m.d.ChangedSinceSave = true
	m.d.ChangedSinceRecovery = true
	m.evaluate(m.d.PlayPosition)
}

// Quit

func (m *Model) Quit() Action { return MakeAction((*quit)(m)) }

type quit Model

func (m *quit) Do() {
	m.quitted = true
}
