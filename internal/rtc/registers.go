package rtc

// Address is the 7-bit I2C address of the RTC-8564 (0xA2 write, 0xA3 read).
const Address = 0x51

// Register map.
const (
	Control1     = 0x00
	Control2     = 0x01
	Seconds      = 0x02 // bit 7 is VL
	Minutes      = 0x03
	Hours        = 0x04
	Days         = 0x05
	Weekdays     = 0x06
	Months       = 0x07 // bit 7 is the century flag
	Years        = 0x08
	ClkOut       = 0x0D
	TimerControl = 0x0E
	Timer        = 0x0F
)

// Register bits.
const (
	VL = 1 << 7 // seconds register: clock integrity lost

	secondsMask = 0x7F
	minutesMask = 0x7F
	hoursMask   = 0x3F
	daysMask    = 0x3F
	monthsMask  = 0x1F

	// CLKOUT: FE enables the output, FD1/FD0 select its frequency.
	clkOutMask = 0x83
	clkOutFE   = 0x80
	clkOut1Hz  = 0x83

	control1Stop  = 0x20 // STOP
	control1Run   = 0x10 // TI/TP, clock running
	control2Ints  = 0x11 // AIE, TIE
	timerSrc1Hz   = 0x82 // TE, 1 Hz source clock
	timerPeriod1s = 0x01
)
