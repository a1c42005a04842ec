package editor

import (
	"visu"
)

// Player plays the audio clip and owns the playback clock. It runs in the
// audio goroutine: the audio device calls Process to fill each output block,
// and between blocks the player drains its messages from the broker. Every
// processed block sends a position tick to the model, which is what drives
// segment evaluation, and a copy of the played audio to the analyzer.
type Player struct {
	clip    visu.Clip
	playing bool
	frame   int

	broker *Broker
}

func NewPlayer(broker *Broker) *Player {
	return &Player{broker: broker}
}

// Process fills one block of output audio. When stopped, or past the end of
// the clip, the block is silence; position ticks keep flowing either way so
// the model always knows where the transport is.
func (p *Player) Process(buffer visu.AudioBuffer) {
	p.processMessages()
	rendered := 0
	if p.playing {
		for rendered < len(buffer) && p.frame < len(p.clip.Data) {
			buffer[rendered] = p.clip.Data[p.frame]
			rendered++
			p.frame++
		}
		if p.frame >= len(p.clip.Data) {
			// end of the track stops the transport instead of wrapping, so a
			// final feedback-heavy visual stays on screen
			p.playing = false
		}
	}
	for i := rendered; i < len(buffer); i++ {
		buffer[i] = [2]float32{}
	}
	if rendered > 0 {
		chunkTime := p.clip.TimeAt(p.frame - rendered)
		bufPtr := p.broker.GetAudioBuffer() // borrow a buffer from the broker
		*bufPtr = append(*bufPtr, buffer[:rendered]...)
		if !TrySend(p.broker.ToAnalyzer, MsgToAnalyzer{Time: chunkTime, Data: bufPtr}) {
			p.broker.PutAudioBuffer(bufPtr)
		}
	}
	TrySend(p.broker.ToModel, MsgToModel{
		HasPosition: true,
		Position:    p.clip.TimeAt(p.frame),
		Playing:     p.playing,
	})
}

// processMessages drains the player's message channel without blocking; the
// audio deadline does not wait.
func (p *Player) processMessages() {
	for {
		select {
		case msg := <-p.broker.ToPlayer:
			if msg.Clip != nil {
				p.clip = *msg.Clip
				p.playing = false
				p.frame = 0
			}
			if msg.HasSeek {
				p.frame = p.clip.FrameAt(msg.Seek)
			}
			if msg.HasPlaying {
				p.playing = msg.Playing && p.clip.SampleRate != 0
			}
			if f, ok := msg.Data.(func()); ok {
				f()
			}
		default:
			return
		}
	}
}
