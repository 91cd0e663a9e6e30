package rtc

// ToBCD converts 0-99 to packed binary-coded decimal.
func ToBCD(v int) byte {
	return byte(v/10)<<4 | byte(v%10)
}

// FromBCD converts packed binary-coded decimal to an integer.
func FromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}
