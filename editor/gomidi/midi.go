// Package gomidi connects the editor to MIDI hardware through rtmidi. Only
// the realtime transport messages are acted on: Start and Continue press
// play, Stop pauses. Everything else is ignored.
package gomidi

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"visu/editor"
)

type (
	RTMIDIContext struct {
		driver             *rtmididrv.Driver
		currentIn          drivers.In
		inputDevices       []RTMIDIDevice
		devicesInitialized bool
		broker             *editor.Broker
	}

	RTMIDIDevice struct {
		context *RTMIDIContext
		in      drivers.In
	}
)

// NewContext opens the rtmidi driver. There is not much to do if that fails,
// so a nil driver just means no devices will be found.
func NewContext(broker *editor.Broker) *RTMIDIContext {
	m := RTMIDIContext{broker: broker}
	m.driver, _ = rtmididrv.New()
	return &m
}

func (c *RTMIDIContext) Inputs(yield func(input editor.MIDIInputDevice) bool) {
	if c.devicesInitialized {
		for _, device := range c.inputDevices {
			if !yield(device) {
				break
			}
		}
		return
	}
	if c.driver == nil {
		return
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return
	}
	for i := 0; i < len(ins); i++ {
		device := RTMIDIDevice{context: c, in: ins[i]}
		c.inputDevices = append(c.inputDevices, device)
		if !yield(device) {
			break
		}
	}
	c.devicesInitialized = true
}

// Open an input device, closing the currently open one if necessary.
func (d RTMIDIDevice) Open() error {
	c := d.context
	if c.currentIn == d.in {
		return nil
	}
	if c.driver == nil {
		return errors.New("no driver available")
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = d.in
	if err := d.in.Open(); err != nil {
		c.currentIn = nil
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	_, err := midi.ListenTo(d.in, c.handleMessage)
	if err != nil {
		d.in.Close()
		c.currentIn = nil
	}
	return err
}

func (d RTMIDIDevice) Close() error {
	if d.context.currentIn != d.in {
		return nil
	}
	d.context.currentIn = nil
	return d.in.Close()
}

func (d RTMIDIDevice) IsOpen() bool   { return d.in.IsOpen() }
func (d RTMIDIDevice) String() string { return d.in.String() }

func (c *RTMIDIContext) handleMessage(msg midi.Message, timestampms int32) {
	switch {
	case msg.Is(midi.StartMsg), msg.Is(midi.ContinueMsg):
		editor.TrySend(c.broker.ToPlayer, editor.MsgToPlayer{HasPlaying: true, Playing: true})
	case msg.Is(midi.StopMsg):
		editor.TrySend(c.broker.ToPlayer, editor.MsgToPlayer{HasPlaying: true, Playing: false})
	}
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.driver.Close()
}
