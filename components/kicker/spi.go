package kicker

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	host "periph.io/x/host/v3"

	"go.viam.com/soccer/config"
	"go.viam.com/soccer/logging"
)

// SPIModel is the model name of the SPI attached kicker board.
const SPIModel = "spi"

// kickByte is the command byte that fires the kicker. Any other byte only clocks out a reading.
const (
	kickByte = 0xFF
	pollByte = 0x00
)

const defaultBaudHz = 1000000

func init() {
	Register(SPIModel, func(ctx context.Context, conf config.KickerConfig, logger logging.Logger) (Kicker, error) {
		var attrs SPIConfig
		if err := conf.Attributes.Decode(&attrs); err != nil {
			return nil, errors.Wrap(err, "invalid spi kicker attributes")
		}
		if err := attrs.Validate("kicker.attributes"); err != nil {
			return nil, err
		}
		return OpenSPIKicker(attrs, logger)
	})
}

// SPIConfig describes how the kicker board is wired.
type SPIConfig struct {
	Bus            string  `json:"bus"`
	ChipSelect     string  `json:"chip_select"`
	BaudHz         int     `json:"baud_hz,omitempty"`
	Mode           int     `json:"mode,omitempty"`
	FullScaleVolts float64 `json:"full_scale_volts"`
}

// Validate ensures all parts of the config are valid.
func (conf *SPIConfig) Validate(path string) error {
	if conf.Bus == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "bus")
	}
	if conf.ChipSelect == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "chip_select")
	}
	if conf.FullScaleVolts <= 0 {
		return utils.NewConfigValidationError(path, errors.New("full_scale_volts must be positive"))
	}
	if conf.BaudHz < 0 {
		return utils.NewConfigValidationError(path, errors.New("baud_hz cannot be negative"))
	}
	if conf.Mode < 0 || conf.Mode > 3 {
		return utils.NewConfigValidationError(path, errors.Errorf("spi mode %d out of range", conf.Mode))
	}
	return nil
}

// txConn is the part of spi.Conn the kicker needs.
type txConn interface {
	Tx(w, r []byte) error
}

// spiKicker talks to the kicker board with one byte full duplex transfers. After each transfer
// the board samples its supply voltage and loads the 8 bit reading into the shift register, so
// the byte received on a transfer is the reading taken after the previous one.
type spiKicker struct {
	mu        sync.Mutex
	conn      txConn
	closer    func() error
	fullScale float64
	logger    logging.Logger
	closed    bool
}

// OpenSPIKicker opens the SPI port of the kicker board.
func OpenSPIKicker(conf SPIConfig, logger logging.Logger) (Kicker, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph host")
	}
	port, err := spireg.Open(fmt.Sprintf("SPI%s.%s", conf.Bus, conf.ChipSelect))
	if err != nil {
		return nil, err
	}
	baud := conf.BaudHz
	if baud == 0 {
		baud = defaultBaudHz
	}
	conn, err := port.Connect(physic.Hertz*physic.Frequency(baud), spi.Mode(conf.Mode), 8)
	if err != nil {
		return nil, multierr.Combine(err, port.Close())
	}
	logger.Infow("kicker connected", "bus", conf.Bus, "chip_select", conf.ChipSelect, "baud_hz", baud)
	return newSPIKicker(conn, port.Close, conf.FullScaleVolts, logger), nil
}

func newSPIKicker(conn txConn, closer func() error, fullScale float64, logger logging.Logger) *spiKicker {
	return &spiKicker{conn: conn, closer: closer, fullScale: fullScale, logger: logger}
}

func (k *spiKicker) transfer(tx byte) (byte, error) {
	if k.closed {
		return 0, errors.New("can't use an already closed kicker")
	}
	rx := make([]byte, 1)
	if err := k.conn.Tx([]byte{tx}, rx); err != nil {
		return 0, err
	}
	return rx[0], nil
}

func (k *spiKicker) Kick(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, err := k.transfer(kickByte); err != nil {
		return errors.Wrap(err, "kick transfer failed")
	}
	k.logger.Debug("kick sent")
	return nil
}

// Voltage clocks two bytes: the first makes the board take a fresh sample, the second reads it.
func (k *spiKicker) Voltage(ctx context.Context) (float64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, err := k.transfer(pollByte); err != nil {
		return 0, errors.Wrap(err, "voltage transfer failed")
	}
	reading, err := k.transfer(pollByte)
	if err != nil {
		return 0, errors.Wrap(err, "voltage transfer failed")
	}
	return float64(reading) / 255 * k.fullScale, nil
}

func (k *spiKicker) Close(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	if k.closer == nil {
		return nil
	}
	return k.closer()
}
