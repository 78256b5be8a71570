// internal/cp2112/reports.go
package cp2112

import (
	"encoding/binary"

	"periph.io/x/conn/v3/physic"
)

// HID report IDs (Silicon Labs AN495).
const (
	reportSMBusConfig            byte = 0x06
	reportDataReadRequest        byte = 0x10
	reportDataWriteReadRequest   byte = 0x11
	reportDataReadForceSend      byte = 0x12
	reportDataReadResponse       byte = 0x13
	reportDataWrite              byte = 0x14
	reportTransferStatusRequest  byte = 0x15
	reportTransferStatusResponse byte = 0x16
	reportCancelTransfer         byte = 0x17
)

// Transfer status byte 0.
const (
	statusIdle     byte = 0x00
	statusBusy     byte = 0x01
	statusComplete byte = 0x02
	statusError    byte = 0x03
)

// ---- LIMITS ----

// reportLen is the interrupt report size including the report ID.
const reportLen = 64

// maxWriteLen is the payload capacity of one Data Write report.
const maxWriteLen = 61

// maxTargetLen is the largest register address prefix of a write-read request.
const maxTargetLen = 16

// maxReadLen is the largest read the bridge accepts in one request.
const maxReadLen = 512

// maxTimeoutMs is the firmware limit for read/write timeouts and retries.
const maxTimeoutMs = 1000

// smbusConfigLen is the Set SMBus Configuration feature report size.
const smbusConfigLen = 14

func newReport(id byte) []byte {
	b := make([]byte, reportLen)
	b[0] = id
	return b
}

// encodeSMBusConfig builds feature report 0x06.
//
// Layout (big-endian):
// 0      Report ID
// 1–4    Clock speed (Hz)
// 5      Device (ACK) address
// 6      Auto send read
// 7–8    Write timeout (ms)
// 9–10   Read timeout (ms)
// 11     SCL low timeout
// 12–13  Retry time
func encodeSMBusConfig(c Config) []byte {
	b := make([]byte, smbusConfigLen)
	b[0] = reportSMBusConfig
	binary.BigEndian.PutUint32(b[1:5], uint32(c.ClockSpeed/physic.Hertz))
	b[5] = c.AckAddress
	b[6] = boolByte(c.AutoSendRead)
	binary.BigEndian.PutUint16(b[7:9], uint16(c.WriteTimeout.Milliseconds()))
	binary.BigEndian.PutUint16(b[9:11], uint16(c.ReadTimeout.Milliseconds()))
	b[11] = boolByte(c.SCLLowTimeout)
	binary.BigEndian.PutUint16(b[12:14], c.Retries)
	return b
}

func dataReadRequest(slave byte, n int) []byte {
	b := newReport(reportDataReadRequest)
	b[1] = slave
	binary.BigEndian.PutUint16(b[2:4], uint16(n))
	return b
}

func dataWriteReadRequest(slave byte, target []byte, n int) []byte {
	b := newReport(reportDataWriteReadRequest)
	b[1] = slave
	binary.BigEndian.PutUint16(b[2:4], uint16(n))
	b[4] = byte(len(target))
	copy(b[5:], target)
	return b
}

func dataReadForceSend(n int) []byte {
	b := newReport(reportDataReadForceSend)
	binary.BigEndian.PutUint16(b[1:3], uint16(n))
	return b
}

func dataWrite(slave byte, data []byte) []byte {
	b := newReport(reportDataWrite)
	b[1] = slave
	b[2] = byte(len(data))
	copy(b[3:], data)
	return b
}

func transferStatusRequest() []byte {
	b := newReport(reportTransferStatusRequest)
	b[1] = 0x01
	return b
}

func cancelTransfer() []byte {
	b := newReport(reportCancelTransfer)
	b[1] = 0x01
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
