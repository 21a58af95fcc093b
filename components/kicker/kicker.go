// Package kicker defines the interface of the kicker peripheral and the registry of kicker models.
package kicker

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/soccer/config"
	"go.viam.com/soccer/logging"
)

// A Kicker fires the robot's kicker and reports the voltage of its capacitor supply.
type Kicker interface {
	// Kick fires the kicker once.
	Kick(ctx context.Context) error
	// Voltage returns the latest supply reading in volts.
	Voltage(ctx context.Context) (float64, error)
	Close(ctx context.Context) error
}

// Constructor builds a kicker of one model from its configuration.
type Constructor func(ctx context.Context, conf config.KickerConfig, logger logging.Logger) (Kicker, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register registers a kicker model. Registering the same model twice panics.
func Register(model string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, old := registry[model]; old {
		panic(fmt.Sprintf("trying to register two kicker models with same name %q", model))
	}
	registry[model] = constructor
}

// New builds the kicker described by conf.
func New(ctx context.Context, conf config.KickerConfig, logger logging.Logger) (Kicker, error) {
	registryMu.RLock()
	constructor, ok := registry[conf.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown kicker model %q", conf.Type)
	}
	return constructor(ctx, conf, logger.Sublogger("kicker"))
}
