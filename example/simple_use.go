package main

import (
	"errors"
	"fmt"
	"io"

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

	devices, err := engine.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	rx, stream, err := engine.OpenReceiver(0)
	if err != nil {
		log.Error("Failed to open MIDI device", log.Field().Error("error", err))
		return
	}
	defer stream.Close()

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	for {
		msg, err := rx.Extract()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Error("Receive error", log.Field().Error("error", err))
			continue
		}

		log.Info("MIDI Event",
			log.Field().Time("Timestamp", msg.Timestamp),
			log.Field().Int("Kind", int(msg.Kind)),
			log.Field().Int("Channel", int(msg.Channel)),
			log.Field().Int("ChannelKind", int(msg.ChannelKind)),
			log.Field().Uint8("Note", msg.Note),
			log.Field().Uint8("Velocity", msg.Velocity),
		)
	}
}
