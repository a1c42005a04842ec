package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"visu/audio"
	"visu/editor"
	"visu/editor/gomidi"
	"visu/oto"
	"visu/version"
)

var defaultMidiInput = flag.String("midi-input", "", "connect MIDI input to matching device name prefix")
var versionFlag = flag.Bool("v", false, "Print version.")

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(0)
	}
	recoveryFile := ""
	if configDir, err := os.UserConfigDir(); err == nil {
		recoveryFile = filepath.Join(configDir, "Visu", "visu-play-recovery")
	}
	broker := editor.NewBroker()
	midiContext := gomidi.NewContext(broker)
	model := editor.NewModel(broker, midiContext, recoveryFile)
	defer model.MIDI().Close()
	if *defaultMidiInput != "" {
		model.MIDI().Refresh().Do()
		if name, ok := findMIDIInputByPrefix(model, *defaultMidiInput); ok {
			if err := model.MIDI().SelectInput(name); err != nil {
				log.Printf("failed to open MIDI input '%s': %v", name, err)
			}
		} else {
			log.Printf("no MIDI input device found with prefix '%s'", *defaultMidiInput)
		}
	}

	projectFile := flag.Arg(0)
	f, err := os.Open(projectFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open project %v: %v\n", projectFile, err)
		os.Exit(1)
	}
	model.ReadProject(f)

	trackPath := model.Playback().AudioFile()
	if trackPath == "" {
		fmt.Fprintf(os.Stderr, "project %v has no audio track\n", projectFile)
		os.Exit(1)
	}
	if !filepath.IsAbs(trackPath) {
		trackPath = filepath.Join(filepath.Dir(projectFile), trackPath)
	}
	clip, err := audio.Load(trackPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load audio track %v: %v\n", trackPath, err)
		os.Exit(1)
	}
	model.Playback().SetClip(clip, trackPath)

	audioContext, err := oto.NewContext(clip.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not acquire audio context: %v\n", err)
		os.Exit(1)
	}
	defer audioContext.Close()

	analyzer := editor.NewAnalyzer(broker, model.SignalCell())
	go analyzer.Run()
	defer func() {
		broker.CloseAnalyzer <- struct{}{}
		<-broker.FinishedAnalyzer
	}()

	player := editor.NewPlayer(broker)
	audioContext.Play(player)
	model.Playback().PlayFromStart().Do()

	// the model loop owns the model: segment evaluation and rendering happen
	// here, driven by the position ticks the player sends
	started := false
	for msg := range broker.ToModel {
		model.ProcessMsg(msg)
		if msg.HasPosition {
			if msg.Playing {
				started = true
			} else if started {
				break // played to the end
			}
		}
		if model.Quitted() {
			break
		}
	}
	if err := model.SaveRecovery(); err != nil {
		log.Printf("could not save recovery file: %v", err)
	}
}

func findMIDIInputByPrefix(model *editor.Model, prefix string) (string, bool) {
	for _, name := range model.MIDI().InputNames() {
		if strings.HasPrefix(name, prefix) {
			return name, true
		}
	}
	return "", false
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Plays a visu project: audio out the speakers, visuals rendered from the time-coded segments.\nUsage: %s [flags] project.yml\n", os.Args[0])
	flag.PrintDefaults()
}
