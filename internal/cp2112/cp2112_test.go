// internal/cp2112/cp2112_test.go
package cp2112

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/sstallion/go-hid"
	"periph.io/x/conn/v3/physic"
)

// ---- fake bridge ----

// fakeHID emulates the CP2112 report protocol against a register table.
type fakeHID struct {
	regs      map[byte][]byte
	nack      map[byte]bool
	busyPolls int
	readErr   error

	features [][]byte
	writes   [][]byte
	slaves   []byte
	cancels  int
	closed   bool

	pending  []byte
	failed   bool
	busyLeft int
	queue    [][]byte
}

func newFakeHID() *fakeHID {
	return &fakeHID{
		regs: map[byte][]byte{},
		nack: map[byte]bool{},
	}
}

func (f *fakeHID) Write(p []byte) (int, error) {
	switch p[0] {
	case reportDataWriteReadRequest:
		target := p[5]
		n := int(binary.BigEndian.Uint16(p[2:4]))
		data := f.regs[target]
		if len(data) > n {
			data = data[:n]
		}
		f.slaves = append(f.slaves, p[1])
		f.pending = append([]byte(nil), data...)
		f.failed = f.nack[target]
		f.busyLeft = f.busyPolls

	case reportDataWrite:
		n := int(p[2])
		f.slaves = append(f.slaves, p[1])
		f.writes = append(f.writes, append([]byte(nil), p[3:3+n]...))
		f.pending = nil
		f.failed = f.nack[p[3]]
		f.busyLeft = f.busyPolls

	case reportTransferStatusRequest:
		resp := make([]byte, 7)
		resp[0] = reportTransferStatusResponse
		switch {
		case f.busyLeft > 0:
			f.busyLeft--
			resp[1] = statusBusy
		case f.failed:
			resp[1] = statusError
			resp[2] = 0x00
		default:
			resp[1] = statusComplete
			binary.BigEndian.PutUint16(resp[5:7], uint16(len(f.pending)))
		}
		f.queue = append(f.queue, resp)

	case reportDataReadForceSend:
		for len(f.pending) > 0 {
			n := len(f.pending)
			if n > maxWriteLen {
				n = maxWriteLen
			}
			resp := append([]byte{reportDataReadResponse, statusComplete, byte(n)}, f.pending[:n]...)
			f.queue = append(f.queue, resp)
			f.pending = f.pending[n:]
		}

	case reportCancelTransfer:
		f.cancels++
	}
	return len(p), nil
}

func (f *fakeHID) ReadWithTimeout(p []byte, _ time.Duration) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.queue) == 0 {
		return 0, hid.ErrTimeout
	}
	n := copy(p, f.queue[0])
	f.queue = f.queue[1:]
	return n, nil
}

func (f *fakeHID) SendFeatureReport(p []byte) (int, error) {
	f.features = append(f.features, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeHID) Close() error {
	f.closed = true
	return nil
}

// ---- tests ----

func TestConfigure_FeatureReport(t *testing.T) {
	dev := newFakeHID()
	b := New(dev, DefaultConfig())

	if err := b.Configure(); err != nil {
		t.Fatalf("Configure() err=%v", err)
	}

	want := []byte{
		0x06,
		0x00, 0x01, 0x86, 0xA0, // 100 kHz
		0x02,       // ack address
		0x00,       // auto send read
		0x00, 0x0A, // write timeout
		0x00, 0x0A, // read timeout
		0x01,       // scl low timeout
		0x00, 0x00, // retries
	}
	if len(dev.features) != 1 || !bytes.Equal(dev.features[0], want) {
		t.Fatalf("feature report = % x, want % x", dev.features, want)
	}
}

func TestConfigure_Rejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 2 * time.Second

	dev := newFakeHID()
	if err := New(dev, cfg).Configure(); err == nil {
		t.Fatalf("expected read timeout to be rejected")
	}
	if len(dev.features) != 0 {
		t.Fatalf("invalid config must not reach the bridge")
	}
}

func TestSetSpeed(t *testing.T) {
	dev := newFakeHID()
	b := New(dev, DefaultConfig())

	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatalf("SetSpeed() err=%v", err)
	}
	got := binary.BigEndian.Uint32(dev.features[0][1:5])
	if got != 400000 {
		t.Fatalf("clock = %d, want 400000", got)
	}
}

func TestTx_WriteRead(t *testing.T) {
	dev := newFakeHID()
	dev.regs[0x8D] = []byte{0x00, 0x05}
	b := New(dev, DefaultConfig())

	r := make([]byte, 2)
	if err := b.Tx(0x64, []byte{0x8D}, r); err != nil {
		t.Fatalf("Tx() err=%v", err)
	}
	if !bytes.Equal(r, []byte{0x00, 0x05}) {
		t.Fatalf("read = % x, want 00 05", r)
	}
	if dev.slaves[0] != 0xC8 {
		t.Fatalf("wire address = 0x%02x, want 0xc8", dev.slaves[0])
	}
}

func TestTx_BusyThenComplete(t *testing.T) {
	dev := newFakeHID()
	dev.regs[0x88] = []byte{0x00, 0x14}
	dev.busyPolls = 3
	b := New(dev, DefaultConfig())

	r := make([]byte, 2)
	if err := b.Tx(0x64, []byte{0x88}, r); err != nil {
		t.Fatalf("Tx() err=%v", err)
	}
	if !bytes.Equal(r, []byte{0x00, 0x14}) {
		t.Fatalf("read = % x, want 00 14", r)
	}
}

func TestTx_Write(t *testing.T) {
	dev := newFakeHID()
	b := New(dev, DefaultConfig())

	if err := b.Tx(0x64, []byte{0xEA, 0x00, 0x4B}, nil); err != nil {
		t.Fatalf("Tx() err=%v", err)
	}
	if len(dev.writes) != 1 || !bytes.Equal(dev.writes[0], []byte{0xEA, 0x00, 0x4B}) {
		t.Fatalf("writes = % x", dev.writes)
	}
}

func TestTx_Nack(t *testing.T) {
	dev := newFakeHID()
	dev.nack[0x79] = true
	b := New(dev, DefaultConfig())

	err := b.Tx(0x64, []byte{0x79}, make([]byte, 2))
	var te *TransferError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransferError, got %v", err)
	}
}

func TestTx_ShortRead(t *testing.T) {
	dev := newFakeHID()
	dev.regs[0xCD] = []byte{0x07}
	b := New(dev, DefaultConfig())

	err := b.Tx(0x64, []byte{0xCD}, make([]byte, 2))
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestTx_ShortReadAfterReadTimeout(t *testing.T) {
	dev := newFakeHID()
	dev.regs[0x79] = []byte{0x01}
	b := New(dev, DefaultConfig())

	err := b.Tx(0x64, []byte{0x79}, make([]byte, 2))
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("short read must not surface as a timeout: %v", err)
	}
}

func TestTx_ReadErrorIsNotTimeout(t *testing.T) {
	dev := newFakeHID()
	dev.regs[0x8D] = []byte{0x00, 0x05}
	dev.readErr = errors.New("device disconnected")
	b := New(dev, DefaultConfig())

	err := b.Tx(0x64, []byte{0x8D}, make([]byte, 2))
	if err == nil || errors.Is(err, ErrTimeout) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if !errors.Is(err, dev.readErr) {
		t.Fatalf("read error not wrapped: %v", err)
	}
}

func TestTx_NoResponseTimesOut(t *testing.T) {
	dev := &silentHID{}
	cfg := DefaultConfig()
	cfg.ResponseTimeout = 5 * time.Millisecond
	b := New(dev, cfg)

	err := b.Tx(0x64, []byte{0x8D}, make([]byte, 2))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if dev.cancels != 1 {
		t.Fatalf("expected one cancel, got %d", dev.cancels)
	}
}

func TestTx_InvalidRequests(t *testing.T) {
	b := New(newFakeHID(), DefaultConfig())

	if err := b.Tx(0xC8, []byte{0x8D}, make([]byte, 2)); err == nil {
		t.Fatalf("expected 8-bit address to be rejected")
	}
	if err := b.Tx(0x64, nil, nil); err == nil {
		t.Fatalf("expected empty transaction to be rejected")
	}
	if err := b.Tx(0x64, make([]byte, 62), nil); err == nil {
		t.Fatalf("expected oversize write to be rejected")
	}
}

func TestClose(t *testing.T) {
	dev := newFakeHID()
	b := New(dev, DefaultConfig())

	if err := b.Close(); err != nil {
		t.Fatalf("Close() err=%v", err)
	}
	if !dev.closed {
		t.Fatalf("device not closed")
	}
	if err := b.Tx(0x64, []byte{0x8D}, make([]byte, 2)); err == nil {
		t.Fatalf("expected Tx on closed bus to fail")
	}
}

// silentHID accepts every report and never answers.
type silentHID struct {
	cancels int
}

func (s *silentHID) Write(p []byte) (int, error) {
	if p[0] == reportCancelTransfer {
		s.cancels++
	}
	return len(p), nil
}

func (s *silentHID) ReadWithTimeout(p []byte, timeout time.Duration) (int, error) {
	time.Sleep(timeout)
	return 0, hid.ErrTimeout
}

func (s *silentHID) SendFeatureReport(p []byte) (int, error) { return len(p), nil }
func (s *silentHID) Close() error                            { return nil }
