package editor

import "visu"

// PlaybackModel is the view of the model for transport control. The player
// owns the clock; the model only sends requests and tracks the last position
// tick it received.
type PlaybackModel Model

func (m *Model) Playback() *PlaybackModel { return (*PlaybackModel)(m) }

// Playing returns a Bool binding to the transport state.
func (v *PlaybackModel) Playing() Bool { return MakeBool((*playing)(v)) }

type playing PlaybackModel

func (v *playing) Value() bool { return v.d.Playing }
func (v *playing) SetValue(value bool) {
	v.d.Playing = value
	TrySend(v.broker.ToPlayer, MsgToPlayer{HasPlaying: true, Playing: value})
}
func (v *playing) Enabled() bool { return v.clip.SampleRate != 0 }

// PlayFromStart rewinds to zero and starts playing.
func (v *PlaybackModel) PlayFromStart() Action { return MakeAction((*playFromStart)(v)) }

type playFromStart PlaybackModel

func (v *playFromStart) Enabled() bool { return v.clip.SampleRate != 0 }
func (v *playFromStart) Do() {
	(*PlaybackModel)(v).Seek(0)
	(*PlaybackModel)(v).Playing().SetValue(true)
}

// Seek moves the transport to time t. The model evaluates segments at the
// new position immediately so scrubbing feels instant, without waiting for
// the next position tick to travel through the player.
func (v *PlaybackModel) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if d := v.d.Project.Audio.Duration; d > 0 && t > d {
		t = d
	}
	m := (*Model)(v)
	m.d.PlayPosition = t
	TrySend(v.broker.ToPlayer, MsgToPlayer{HasSeek: true, Seek: t})
	TrySend(v.broker.ToAnalyzer, MsgToAnalyzer{Reset: true})
	m.evaluate(t)
}

// SetClip hands a decoded audio clip to the session: the player switches to
// it, the analyzer resets, and the project's audio duration follows the
// clip.
func (v *PlaybackModel) SetClip(clip visu.Clip, file string) {
	m := (*Model)(v)
	defer m.change("SetClip", MediaChange, MajorChange)()
	m.clip = clip
	m.d.Project.Audio = visu.AudioInfo{File: file, Duration: clip.Duration()}
	m.d.PlayPosition = 0
	m.d.Playing = false
	c := clip
	TrySend(v.broker.ToPlayer, MsgToPlayer{Clip: &c, HasSeek: true})
	TrySend(v.broker.ToAnalyzer, MsgToAnalyzer{Reset: true, SampleRate: clip.SampleRate})
}

// Clip returns the loaded audio clip; SampleRate is 0 when none is loaded.
func (v *PlaybackModel) Clip() visu.Clip { return v.clip }

// AudioFile returns the audio track file name stored in the project.
func (v *PlaybackModel) AudioFile() string { return v.d.Project.Audio.File }
