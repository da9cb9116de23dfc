package main

import (
	"fmt"
	"os"

	"github.com/leandrodaf/midiengine/sdk/midi"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: readsmf <path-to-midi-file>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Println("failed to open file:", err)
		os.Exit(1)
	}
	defer f.Close()

	file, err := midi.ReadFile(f)
	if err != nil {
		fmt.Println("failed to parse SMF file:", err)
		os.Exit(1)
	}

	fmt.Printf("format: %s, tracks: %d\n", formatName(file.AsynchronousTracks, len(file.Tracks)), len(file.Tracks))
	if file.TimeDivision.SMPTE {
		fmt.Printf("division: SMPTE %d fps, %d ticks/frame\n", file.TimeDivision.FramesPerSecond, file.TimeDivision.ClocksPerFrame)
	} else {
		fmt.Printf("division: %d ticks/quarter note\n", file.TimeDivision.TicksPerQuarter)
	}

	for i, track := range file.Tracks {
		fmt.Printf("track %d: %d tick groups\n", i, len(track))
		for _, entry := range track {
			for _, msg := range entry.Messages {
				fmt.Printf("  tick=%d kind=%v\n", entry.Tick, msg.Kind)
			}
		}
	}
}

func formatName(async bool, numTracks int) string {
	if async {
		return "2 (asynchronous tracks)"
	}
	if numTracks > 1 {
		return "1 (simultaneous tracks)"
	}
	return "0 (single track)"
}
