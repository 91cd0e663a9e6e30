package rtc

import (
	"errors"
	"fmt"
	"sync"
)

// FakeBus is an in-memory RTC register file that implements drivers.I2C.
// A transaction's first written byte sets the register pointer; further
// written bytes and all read bytes auto-increment it.
type FakeBus struct {
	mu sync.Mutex

	// Regs is the register file.
	Regs [16]byte

	// StickyVL keeps VL set when the seconds register is written, as on a
	// chip whose oscillator has not recovered.
	StickyVL bool

	// Fail, if set, is returned by every Tx and no register changes.
	Fail error

	// Writes records every (register, value) pair written, in order.
	Writes []RegWrite

	// Txs counts transactions, failed ones included.
	Txs int
}

// RegWrite is a single register store seen by FakeBus.
type RegWrite struct {
	Reg byte
	Val byte
}

// NewFakeBus returns a FakeBus with all registers zero.
func NewFakeBus() *FakeBus {
	return &FakeBus{}
}

// Tx performs a register transaction against the fake register file.
func (f *FakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Txs++
	if f.Fail != nil {
		return f.Fail
	}
	if addr != Address {
		return fmt.Errorf("fake rtc: no device at 0x%02X", addr)
	}
	if len(w) == 0 {
		return errors.New("fake rtc: missing register pointer")
	}

	ptr := int(w[0])
	for _, b := range w[1:] {
		reg := byte(ptr % len(f.Regs))
		if reg == Seconds && f.StickyVL {
			b |= VL
		}
		f.Regs[reg] = b
		f.Writes = append(f.Writes, RegWrite{Reg: reg, Val: b})
		ptr++
	}
	for i := range r {
		r[i] = f.Regs[ptr%len(f.Regs)]
		ptr++
	}
	return nil
}

// SetTime loads BCD time registers, leaving VL as given.
func (f *FakeBus) SetTime(hour, minute, second int, vl bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Regs[Seconds] = ToBCD(second)
	if vl {
		f.Regs[Seconds] |= VL
	}
	f.Regs[Minutes] = ToBCD(minute)
	f.Regs[Hours] = ToBCD(hour)
}

// SetDate loads BCD date registers.
func (f *FakeBus) SetDate(year, month, day int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Regs[Days] = ToBCD(day)
	f.Regs[Months] = ToBCD(month)
	f.Regs[Years] = ToBCD(year)
}

// Reg returns the value of one register.
func (f *FakeBus) Reg(reg byte) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Regs[reg]
}
