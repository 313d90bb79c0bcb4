// Package analog implements the VoltageSampler port on top of the
// analogio acquisition backends.
package analog

import (
	"sevenway/internal/core/domain"
	"sevenway/pkg/analogio"
)

// inputMap fixes the channel-to-frontend wiring: board 0 carries the four
// lighting circuits, board 1 carries aux and reverse (plus two spares).
var inputMap = map[domain.Channel]analogio.Input{
	domain.ChannelBrake:     {Board: 0, Channel: 0},
	domain.ChannelTail:      {Board: 0, Channel: 1},
	domain.ChannelLeftTurn:  {Board: 0, Channel: 2},
	domain.ChannelRightTurn: {Board: 0, Channel: 3},
	domain.ChannelAux:       {Board: 1, Channel: 0},
	domain.ChannelReverse:   {Board: 1, Channel: 1},
}

// InputFor returns the frontend input a channel is wired to. The
// simulator uses it to inject voltages at the right place.
func InputFor(ch domain.Channel) analogio.Input {
	return inputMap[ch]
}

// Sampler reads all six trailer channels from an analogio.Reader. A
// failed channel read is reported as Unavailable rather than failing the
// pass: an all-unavailable snapshot is what tells the controller the
// sensing frontend is gone.
type Sampler struct {
	reader analogio.Reader
}

func NewSampler(reader analogio.Reader) *Sampler {
	return &Sampler{reader: reader}
}

func (s *Sampler) Open() error {
	return s.reader.Open()
}

func (s *Sampler) Close() error {
	return s.reader.Close()
}

func (s *Sampler) ReadAll() (domain.RawSamples, error) {
	samples := make(domain.RawSamples, domain.ChannelCount)
	for _, ch := range domain.Channels {
		volts, err := s.reader.ReadVolts(inputMap[ch])
		if err != nil {
			samples[ch] = domain.RawSample{Unavailable: true}
			continue
		}
		samples[ch] = domain.RawSample{Volts: volts}
	}
	return samples, nil
}
