package hal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClock_IsCurrent(t *testing.T) {
	before := uint32(time.Now().Unix())
	now := SystemClock{}.Now()
	assert.GreaterOrEqual(t, now, before)
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(1000)
	assert.Equal(t, uint32(1000), c.Now())

	c.Advance(2500 * time.Millisecond)
	assert.Equal(t, uint32(1002), c.Now())

	c.Set(5)
	assert.Equal(t, uint32(5), c.Now())
}

func TestLogActuator(t *testing.T) {
	a := NewLogActuator(logging.Nop())
	ctx := context.Background()

	require.NoError(t, a.LockOpen(ctx))
	assert.True(t, a.IsOpen())
	require.NoError(t, a.LockClose(ctx))
	assert.False(t, a.IsOpen())
}

func TestGPIOActuator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value")
	require.NoError(t, os.WriteFile(path, []byte("0\n"), 0o600))

	a := NewGPIOActuator(path)
	ctx := context.Background()

	require.NoError(t, a.LockOpen(ctx))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(got))

	require.NoError(t, a.LockClose(ctx))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(got))
}

func TestGPIOActuator_MissingPin(t *testing.T) {
	a := NewGPIOActuator(filepath.Join(t.TempDir(), "gpio99", "value"))
	assert.Error(t, a.LockOpen(context.Background()))
}

func TestNewActuator(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	a, err := NewActuator(cfg, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogActuator{}, a)

	cfg.Actuator = config.ActuatorGPIO
	a, err = NewActuator(cfg, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &GPIOActuator{}, a)

	cfg.Actuator = "servo"
	_, err = NewActuator(cfg, logging.Nop())
	assert.Error(t, err)
}
