// internal/cp2112/tx.go
package cp2112

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/sstallion/go-hid"
)

// TransferError is a bridge-reported transfer failure (status 0x03).
type TransferError struct {
	Detail byte
}

func (e *TransferError) Error() string {
	switch e.Detail {
	case 0x00:
		return "cp2112: transfer failed: address NACKed"
	case 0x01:
		return "cp2112: transfer failed: bus not free"
	case 0x02:
		return "cp2112: transfer failed: arbitration lost"
	case 0x03:
		return "cp2112: transfer failed: read incomplete"
	case 0x04:
		return "cp2112: transfer failed: write incomplete"
	case 0x05:
		return "cp2112: transfer failed: succeeded after retries"
	default:
		return fmt.Sprintf("cp2112: transfer failed: status 0x%02x", e.Detail)
	}
}

// Tx implements i2c.Bus.
//
// addr is the 7-bit slave address. w alone is a Data Write,
// r alone a Data Read, both a Write-Read (register-addressed read).
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return fmt.Errorf("cp2112: invalid 7-bit address 0x%X", addr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dev == nil {
		return errors.New("cp2112: bus closed")
	}

	slave := byte(addr << 1)

	switch {
	case len(w) == 0 && len(r) == 0:
		return errors.New("cp2112: empty transaction")

	case len(r) == 0:
		if len(w) > maxWriteLen {
			return fmt.Errorf("cp2112: write of %d bytes exceeds %d", len(w), maxWriteLen)
		}
		if err := b.send(dataWrite(slave, w)); err != nil {
			return err
		}
		_, err := b.waitTransfer()
		return err

	case len(r) > maxReadLen:
		return fmt.Errorf("cp2112: read of %d bytes exceeds %d", len(r), maxReadLen)

	case len(w) == 0:
		return b.read(dataReadRequest(slave, len(r)), r)

	default:
		if len(w) > maxTargetLen {
			return fmt.Errorf("cp2112: register address of %d bytes exceeds %d", len(w), maxTargetLen)
		}
		return b.read(dataWriteReadRequest(slave, w, len(r)), r)
	}
}

func (b *Bus) read(req []byte, r []byte) error {
	if err := b.send(req); err != nil {
		return err
	}
	if _, err := b.waitTransfer(); err != nil {
		return err
	}
	if err := b.send(dataReadForceSend(len(r))); err != nil {
		return err
	}

	deadline := time.Now().Add(b.cfg.ResponseTimeout)
	got := 0
	for got < len(r) {
		resp, err := b.receive(reportDataReadResponse, deadline)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				break
			}
			return err
		}
		if resp[1] == statusError {
			return &TransferError{Detail: 0x03}
		}
		n := int(resp[2])
		if n == 0 {
			break
		}
		if n > len(resp)-3 {
			n = len(resp) - 3
		}
		got += copy(r[got:], resp[3:3+n])
	}

	if got < len(r) {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, got, len(r))
	}
	return nil
}

// waitTransfer polls the transfer status until the bridge reports
// completion or error. It returns the number of bytes the bridge received.
func (b *Bus) waitTransfer() (int, error) {
	deadline := time.Now().Add(b.cfg.ResponseTimeout)

	for {
		if err := b.send(transferStatusRequest()); err != nil {
			return 0, err
		}
		resp, err := b.receive(reportTransferStatusResponse, deadline)
		if err != nil {
			b.cancel()
			return 0, err
		}

		switch resp[1] {
		case statusIdle, statusBusy:
		case statusComplete:
			return int(binary.BigEndian.Uint16(resp[5:7])), nil
		case statusError:
			return 0, &TransferError{Detail: resp[2]}
		}

		if !time.Now().Before(deadline) {
			b.cancel()
			return 0, ErrTimeout
		}
	}
}

func (b *Bus) cancel() {
	_ = b.send(cancelTransfer())
}

func (b *Bus) send(report []byte) error {
	if _, err := b.dev.Write(report); err != nil {
		return fmt.Errorf("cp2112: write report 0x%02x: %w", report[0], err)
	}
	return nil
}

// receive reads input reports until one with the wanted id arrives.
// Reports with other ids are dropped.
func (b *Bus) receive(id byte, deadline time.Time) ([]byte, error) {
	buf := make([]byte, reportLen)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}
		n, err := b.dev.ReadWithTimeout(buf, remaining)
		if errors.Is(err, hid.ErrTimeout) || (err == nil && n == 0) {
			return nil, ErrTimeout
		}
		if err != nil {
			return nil, fmt.Errorf("cp2112: read report 0x%02x: %w", id, err)
		}
		if n < 7 {
			// Short reports are zero-padded so fixed offsets stay valid.
			for i := n; i < 7; i++ {
				buf[i] = 0
			}
		}
		if buf[0] == id {
			return buf, nil
		}
	}
}
