package store

import "fmt"

// GobEncode lets a HyperLogLog serialize as its raw register bytes,
// since its fields are unexported.
func (h *HyperLogLog) GobEncode() ([]byte, error) {
	buf := make([]byte, hllRegisterCount)
	copy(buf, h.registers[:])
	return buf, nil
}

// GobDecode restores a HyperLogLog from GobEncode's output.
func (h *HyperLogLog) GobDecode(data []byte) error {
	if len(data) != hllRegisterCount {
		return fmt.Errorf("store: corrupt HyperLogLog snapshot: got %d bytes, want %d", len(data), hllRegisterCount)
	}
	copy(h.registers[:], data)
	return nil
}
