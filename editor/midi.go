package editor

import "fmt"

// MIDIModel is the view of the model for MIDI transport control: an external
// sequencer or controller can start and stop playback so the visuals follow
// hardware transport buttons.
type MIDIModel Model

func (m *Model) MIDI() *MIDIModel { return (*MIDIModel)(m) }

type (
	midiState struct {
		context      MIDIContext
		currentInput MIDIInputDevice
		inputs       []MIDIInputDevice
	}

	// MIDIContext enumerates MIDI input devices. A nil context is valid and
	// means MIDI support is unavailable.
	MIDIContext interface {
		Inputs(yield func(input MIDIInputDevice) bool)
		Close()
	}

	MIDIInputDevice interface {
		Open() error
		Close() error
		IsOpen() bool
		String() string
	}
)

// Refresh re-enumerates the input devices, reopening the current one if it
// is still present.
func (m *MIDIModel) Refresh() Action { return MakeAction((*midiRefresh)(m)) }

type midiRefresh MIDIModel

func (m *midiRefresh) Do() {
	if m.midi.context == nil {
		return
	}
	m.midi.inputs = m.midi.inputs[:0]
	m.midi.context.Inputs(func(input MIDIInputDevice) bool {
		m.midi.inputs = append(m.midi.inputs, input)
		return true
	})
	if m.midi.currentInput == nil {
		return
	}
	for _, input := range m.midi.inputs {
		if input.String() == m.midi.currentInput.String() {
			m.midi.currentInput.Close()
			m.midi.currentInput = nil
			if err := input.Open(); err != nil {
				(*Model)(m).Alerts().Add(fmt.Sprintf("Failed to reopen MIDI input port: %s", err.Error()), Error)
				return
			}
			m.midi.currentInput = input
			return
		}
	}
}

// InputNames returns the names of the known input devices; call Refresh
// first.
func (m *MIDIModel) InputNames() []string {
	names := make([]string, len(m.midi.inputs))
	for i, input := range m.midi.inputs {
		names[i] = input.String()
	}
	return names
}

// SelectInput opens the named input device, closing the previous one.
func (m *MIDIModel) SelectInput(name string) error {
	for _, input := range m.midi.inputs {
		if input.String() != name {
			continue
		}
		if m.midi.currentInput != nil {
			m.midi.currentInput.Close()
		}
		if err := input.Open(); err != nil {
			m.midi.currentInput = nil
			return err
		}
		m.midi.currentInput = input
		return nil
	}
	return fmt.Errorf("no MIDI input named %q", name)
}

// Close shuts the MIDI context down; call on quit.
func (m *MIDIModel) Close() {
	if m.midi.currentInput != nil && m.midi.currentInput.IsOpen() {
		m.midi.currentInput.Close()
	}
	if m.midi.context != nil {
		m.midi.context.Close()
	}
}
