package rtc

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// A periph bus already speaks the drivers.I2C transaction contract.
var _ drivers.I2C = i2c.BusCloser(nil)

// OpenBus opens the named I2C bus ("" for the first one found), e.g. "1"
// or "/dev/i2c-1" on a Raspberry Pi.
func OpenBus(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return bus, nil
}
