// Package seq implements the sequencer itself: the project model with
// its undo history and selection, the transport, and the realtime
// player, communicating through a message broker.
package seq

import (
	"time"

	"github.com/taktile/takt"
)

type (
	// Broker is the hub of messages in the sequencer. The Model and the
	// Player live on different goroutines (the Player runs inside the
	// audio callback), so all communication between them goes through
	// the two channels of the Broker.
	//
	// All sends are non-blocking, with TrySend: when a channel is full,
	// the message is dropped rather than stalling the sender. The audio
	// goroutine in particular must never wait on the model.
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any
	}

	// MsgToModel is a message from the Player to the Model. If
	// HasPanicPosLevels is true, the Panic, Beat, VoiceLevels and
	// MasterVolume fields are valid; Data, if not nil, carries anything
	// else, e.g. an Alert.
	MsgToModel struct {
		HasPanicPosLevels bool
		Panic             bool
		Beat              float64
		VoiceLevels       [takt.MaxVoices]float32
		MasterVolume      Volume

		Data any
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel:  make(chan MsgToModel, 1024),
		ToPlayer: make(chan any, 1024),
	}
}

// TrySend tries sending the value to the channel and returns true if it
// succeeded; if the channel is full, it returns false immediately
// instead of blocking.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive receives a value from the channel, giving up after the
// timeout has passed.
func TimeoutReceive[T any](c <-chan T, timeout time.Duration) (v T, ok bool) {
	select {
	case v = <-c:
		return v, true
	case <-time.After(timeout):
		return v, false
	}
}
