package visu

import "time"

// ProjectVersion is the current version string written into project files.
const ProjectVersion = "1.0"

const (
	MediaVideo = "video"
	MediaImage = "image"
)

type (
	// Project is the persisted project document. It round-trips through JSON
	// (and YAML) exactly; the audio path and media file names are opaque
	// strings to the core, resolved by the loading collaborators.
	Project struct {
		Version      string        `yaml:"version" json:"version"`
		Name         string        `yaml:"name" json:"name"`
		Created      time.Time     `yaml:"created" json:"created"`
		Audio        AudioInfo     `yaml:"audio" json:"audio"`
		MediaSources []MediaSource `yaml:"mediaSources" json:"mediaSources"`
		Segments     SegmentList   `yaml:"segments" json:"segments"`
		WaveformView Viewport      `yaml:"waveformView" json:"waveformView"`
	}

	// AudioInfo names the audio track of the project and its duration in
	// seconds.
	AudioInfo struct {
		File     string  `yaml:"file" json:"file"`
		Duration float64 `yaml:"duration" json:"duration"`
	}

	// MediaSource is one external media input (s0..s3 in segment code),
	// either a video or an image file.
	MediaSource struct {
		Type  string `yaml:"type" json:"type"`
		File  string `yaml:"file" json:"file"`
		Index int    `yaml:"index" json:"index"`
	}
)

// NewProject returns an empty project with the current version and creation
// time and a reset viewport.
func NewProject(name string) Project {
	return Project{
		Version:      ProjectVersion,
		Name:         name,
		Created:      time.Now().UTC().Truncate(time.Second),
		WaveformView: NewViewport(),
	}
}

// Copy makes a deep copy of a Project.
func (p Project) Copy() Project {
	ret := p
	ret.MediaSources = make([]MediaSource, len(p.MediaSources))
	copy(ret.MediaSources, p.MediaSources)
	ret.Segments = p.Segments.Copy()
	return ret
}
