package inject

import (
	"context"

	"go.viam.com/soccer/components/kicker"
)

// Kicker is an injected kicker.
type Kicker struct {
	kicker.Kicker
	KickFunc    func(ctx context.Context) error
	VoltageFunc func(ctx context.Context) (float64, error)
	CloseFunc   func(ctx context.Context) error
}

// Kick calls the injected Kick or the real version.
func (k *Kicker) Kick(ctx context.Context) error {
	if k.KickFunc == nil {
		return k.Kicker.Kick(ctx)
	}
	return k.KickFunc(ctx)
}

// Voltage calls the injected Voltage or the real version.
func (k *Kicker) Voltage(ctx context.Context) (float64, error) {
	if k.VoltageFunc == nil {
		return k.Kicker.Voltage(ctx)
	}
	return k.VoltageFunc(ctx)
}

// Close calls the injected Close or the real version.
func (k *Kicker) Close(ctx context.Context) error {
	if k.CloseFunc == nil {
		if k.Kicker == nil {
			return nil
		}
		return k.Kicker.Close(ctx)
	}
	return k.CloseFunc(ctx)
}
