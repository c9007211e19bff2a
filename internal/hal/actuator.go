package hal

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/logging"
)

// Actuator drives the physical lock.
type Actuator interface {
	LockOpen(ctx context.Context) error
	LockClose(ctx context.Context) error
}

// NewActuator returns the actuator selected by cfg.Actuator.
func NewActuator(cfg *config.Config, log logging.Logger) (Actuator, error) {
	switch cfg.Actuator {
	case config.ActuatorLog:
		return NewLogActuator(log), nil
	case config.ActuatorGPIO:
		return NewGPIOActuator(cfg.GPIOValuePath), nil
	default:
		return nil, fmt.Errorf("unknown actuator %q", cfg.Actuator)
	}
}

// LogActuator only records the transitions. It stands in for the bolt on
// hosts without one.
type LogActuator struct {
	log  logging.Logger
	open bool
}

func NewLogActuator(log logging.Logger) *LogActuator {
	return &LogActuator{log: log}
}

func (a *LogActuator) LockOpen(ctx context.Context) error {
	a.open = true
	a.log.Info(ctx, "lock opened")
	return nil
}

func (a *LogActuator) LockClose(ctx context.Context) error {
	a.open = false
	a.log.Info(ctx, "lock closed")
	return nil
}

func (a *LogActuator) IsOpen() bool { return a.open }

// GPIOActuator writes "1" (open) or "0" (closed) to a GPIO value file such
// as /sys/class/gpio/gpioN/value. The pin must already be exported and
// configured as an output.
type GPIOActuator struct {
	path string
}

func NewGPIOActuator(path string) *GPIOActuator {
	return &GPIOActuator{path: path}
}

func (a *GPIOActuator) LockOpen(_ context.Context) error {
	return a.write('1')
}

func (a *GPIOActuator) LockClose(_ context.Context) error {
	return a.write('0')
}

func (a *GPIOActuator) write(v byte) error {
	f, err := os.OpenFile(a.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open gpio %s: %w", a.path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{v, '\n'}); err != nil {
		return fmt.Errorf("write gpio %s: %w", a.path, err)
	}
	return nil
}
