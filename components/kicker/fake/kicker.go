// Package fake implements a fake kicker that counts kicks.
package fake

import (
	"context"
	"sync"

	"go.viam.com/soccer/components/kicker"
	"go.viam.com/soccer/config"
	"go.viam.com/soccer/logging"
)

// Model is the model name of the fake kicker.
const Model = "fake"

func init() {
	kicker.Register(Model, func(ctx context.Context, conf config.KickerConfig, logger logging.Logger) (kicker.Kicker, error) {
		var attrs Config
		if err := conf.Attributes.Decode(&attrs); err != nil {
			return nil, err
		}
		return NewKicker(attrs, logger), nil
	})
}

// Config is the configuration of a fake kicker.
type Config struct {
	Volts float64 `json:"volts,omitempty"`
}

// Kicker is a fake kicker.
type Kicker struct {
	mu     sync.Mutex
	volts  float64
	kicks  int
	logger logging.Logger
}

var _ kicker.Kicker = (*Kicker)(nil)

// NewKicker returns a fake kicker reporting a constant voltage.
func NewKicker(conf Config, logger logging.Logger) *Kicker {
	return &Kicker{volts: conf.Volts, logger: logger}
}

// Kick counts a kick.
func (k *Kicker) Kick(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kicks++
	k.logger.Infow("fake kick", "count", k.kicks)
	return nil
}

// Kicks returns the number of kicks so far.
func (k *Kicker) Kicks() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.kicks
}

// Voltage returns the configured voltage.
func (k *Kicker) Voltage(ctx context.Context) (float64, error) {
	return k.volts, nil
}

// Close does nothing.
func (k *Kicker) Close(ctx context.Context) error {
	return nil
}
