// Package modem implements the acoustic chord modulation: the message layout,
// the waveform encoder, and the receive path that synchronizes on calibration
// words and decodes data words.
//
// # Message layout
//
// A message is a sequence of equal-length words. It opens with one
// calibration word per trigger pitch, in trigger order, each sounding that
// trigger alone. Each data word then sounds every trigger plus a chord of data
// pitches selected by the shared symbol.Mapping. Optional trailer words sound
// the triggers only.
//
//	cfg, _ := config.New(config.DefaultParams())
//	samples, err := modem.NewEncoder(cfg).Encode(500, payload)
//
// # Receiving
//
// A Receiver reads samples through a Stream, locates the calibration words
// with a Synchronizer, decodes each data word with a Decoder and hands the
// carried bytes to the configured FEC codec:
//
//	rx, _ := modem.NewReceiver(cfg, modem.NewReceiverOptions())
//	msg, err := rx.Receive(ctx, source)
//	if errors.Is(err, modem.ErrSynchronizationTimeout) {
//	    // no message yet, feed more audio
//	}
//
// Synchronization is bounded by ReceiverOptions.ScanBudget and by ctx.
package modem
