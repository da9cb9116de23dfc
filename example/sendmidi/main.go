package main

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midiengine/internal/logger"
	"github.com/leandrodaf/midiengine/sdk/contracts"
	"github.com/leandrodaf/midiengine/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	engine, err := midi.NewEngine(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
	)
	if err != nil {
		log.Error("Failed to initialize engine", log.Field().Error("error", err))
		return
	}

	devices, err := engine.ListOutputDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI output devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI output devices:", devices)

	tx, sink, err := engine.OpenTransmitter(0)
	if err != nil {
		log.Error("Failed to open MIDI output device", log.Field().Error("error", err))
		return
	}
	defer sink.Close()

	noteOn := contracts.NewNoteEvent(0, 0x3C, 0x64, true)
	if err := tx.Emit(noteOn); err != nil {
		log.Error("Send error", log.Field().Error("error", err))
		return
	}

	time.Sleep(250 * time.Millisecond)

	noteOff := contracts.NewNoteEvent(0, 0x3C, 0x40, false)
	if err := tx.Emit(noteOff); err != nil {
		log.Error("Send error", log.Field().Error("error", err))
	}
}
