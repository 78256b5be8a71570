// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// maxWriteRegisters is the FC16 quantity limit.
const maxWriteRegisters = 123

// EndpointClient is the mirror's TCP connection.
// Requests are serialized; the unit id is applied per write.
type EndpointClient struct {
	mu       sync.Mutex
	endpoint string
	handler  *modbus.TCPClientHandler
	client   modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// NewEndpointClient connects to the mirror endpoint once.
// Later transport errors reconnect on the next write.
func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("mirror modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("mirror modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return newEndpointClient(cfg.Endpoint, h, modbus.NewClient(h)), nil
}

func newEndpointClient(endpoint string, h *modbus.TCPClientHandler, c modbus.Client) *EndpointClient {
	return &EndpointClient{endpoint: endpoint, handler: h, client: c}
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes regs as holding registers starting at addr (FC 16).
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 || len(regs) > maxWriteRegisters {
		return fmt.Errorf("mirror modbus: %d registers: must be within 1..%d", len(regs), maxWriteRegisters)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	if _, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs)); err != nil {
		return fmt.Errorf("mirror modbus: %s unit=%d addr=%d qty=%d: %w", c.endpoint, unitID, addr, len(regs), err)
	}
	return nil
}

// packRegisters lays regs out in Modbus (big-endian) order.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
