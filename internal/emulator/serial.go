package emulator

// Serial port registers captured for test images.
const (
	SerialData    uint16 = 0xFF01 // SB
	SerialControl uint16 = 0xFF02 // SC
)

// transferStart is the SC bit that requests a transfer.
const transferStart = 0x80

// serial captures bytes sent through the serial port. A write to SC with the
// transfer bit set completes the transfer at once: SB is appended to the
// output and the transfer bit is cleared.
type serial struct {
	data    uint8
	control uint8
	output  []byte
}

func newSerial() *serial {
	return &serial{output: make([]byte, 0, 1024)}
}

func (s *serial) Read(addr uint16) uint8 {
	if addr == SerialControl {
		return s.control
	}
	return s.data
}

func (s *serial) Write(addr uint16, value uint8) {
	if addr == SerialData {
		s.data = value
		return
	}

	s.control = value
	if value&transferStart != 0 {
		s.output = append(s.output, s.data)
		s.control &^= transferStart
	}
}

func (s *serial) reset() {
	s.data = 0
	s.control = 0
	s.output = s.output[:0]
}
