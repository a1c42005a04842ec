package editor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"visu"
)

// ReadProject loads a project from a reader. JSON is tried first, then YAML,
// so both .vsp.json files and hand-written YAML open the same way. The load
// is a major change: undo returns to the project that was open before.
func (m *Model) ReadProject(r io.ReadCloser) {
	b, err := io.ReadAll(r)
	if err != nil {
		return
	}
	if err := r.Close(); err != nil {
		return
	}
	var project visu.Project
	if errJSON := json.Unmarshal(b, &project); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &project); errYaml != nil {
			m.Alerts().Add(fmt.Sprintf("Error unmarshaling a project file: %v / %v", errYaml, errJSON), Error)
			return
		}
	}
	if project.Version != visu.ProjectVersion {
		m.Alerts().Add(fmt.Sprintf("Project version %q, expected %q; loading anyway", project.Version, visu.ProjectVersion), Warning)
	}
	defer m.change("LoadProject", ProjectChange, MajorChange)()
	m.d.Project = project
	m.d.SegIndex = -1
	m.scheduler.Import(project.Segments)
	m.d.Project.WaveformView.Clamp()
	if f, ok := r.(*os.File); ok {
		m.d.FilePath = f.Name()
		// loaded straight from a file, so there is nothing unsaved yet
		m.d.ChangedSinceSave = false
	}
}

// WriteProject saves the project to a writer. A .json extension writes JSON,
// anything else YAML.
func (m *Model) WriteProject(w io.WriteCloser) {
	path := ""
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	var contents []byte
	var err error
	if filepath.Ext(path) == ".json" {
		contents, err = json.MarshalIndent(m.d.Project, "", "  ")
	} else {
		contents, err = yaml.Marshal(m.d.Project)
	}
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error marshaling a project file: %v", err), Error)
		return
	}
	if _, err := w.Write(contents); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error writing to file: %v", err), Error)
		return
	}
	if err := w.Close(); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error closing the project file: %v", err), Error)
		return
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
	}
}

// FilePath returns a String binding to the current project file path.
func (m *Model) FilePath() String { return MakeString((*filePath)(m)) }

type filePath Model

func (v *filePath) Value() string { return v.d.FilePath }
func (v *filePath) SetValue(value string) bool {
	v.d.FilePath = value
	return true
}

// SaveProject writes the project to its known path.
func (m *Model) SaveProject() Action { return MakeAction((*saveProject)(m)) }

type saveProject Model

func (v *saveProject) Enabled() bool { return v.d.FilePath != "" }
func (v *saveProject) Do() {
	f, err := os.Create(v.d.FilePath)
	if err != nil {
		(*Model)(v).Alerts().Add("Error creating file: "+err.Error(), Error)
		return
	}
	(*Model)(v).WriteProject(f)
}

// ChangedSinceSave tells whether there are unsaved edits.
func (m *Model) ChangedSinceSave() bool { return m.d.ChangedSinceSave }

// Recovery. The whole model data is dumped as JSON so a crashed session
// restores with its undo history, selection and file path intact.

func (m *Model) MarshalRecovery() []byte {
	out, err := json.Marshal(m.d)
	if err != nil {
		return nil
	}
	m.d.ChangedSinceRecovery = false
	return out
}

func (m *Model) UnmarshalRecovery(b []byte) {
	var d modelData
	if err := json.Unmarshal(b, &d); err != nil {
		return
	}
	recoveryPath := m.d.RecoveryFilePath
	m.d = d
	m.d.RecoveryFilePath = recoveryPath
	m.d.ChangedSinceRecovery = false
	m.scheduler.Import(m.d.Project.Segments)
	m.d.Project.WaveformView.Clamp()
	m.evaluate(m.d.PlayPosition)
}

// SaveRecovery writes the recovery file if anything changed since the last
// write. Call it periodically and on quit.
func (m *Model) SaveRecovery() error {
	if !m.d.ChangedSinceRecovery || m.d.RecoveryFilePath == "" {
		return nil
	}
	out := m.MarshalRecovery()
	if out == nil {
		return fmt.Errorf("could not marshal recovery data")
	}
	dir := filepath.Dir(m.d.RecoveryFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create recovery directory: %w", err)
	}
	return os.WriteFile(m.d.RecoveryFilePath, out, 0644)
}

// RemoveRecovery deletes the recovery file, called after a clean save.
func (m *Model) RemoveRecovery() {
	if m.d.RecoveryFilePath == "" {
		return
	}
	os.Remove(m.d.RecoveryFilePath)
}
