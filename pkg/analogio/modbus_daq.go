package analogio

import (
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
)

// ModbusDAQReader reads a serial RTU analog input module that publishes
// millivolt readings in consecutive holding registers. Register layout:
// baseRegister + board*ChannelsPerBoard + channel.
type ModbusDAQReader struct {
	url          string
	unitId       uint8
	baseRegister uint16
	timeout      time.Duration

	client *modbus.ModbusClient
}

func NewModbusDAQReader(url string, unitId uint8, baseRegister uint16, timeout time.Duration) *ModbusDAQReader {
	return &ModbusDAQReader{
		url:          url,
		unitId:       unitId,
		baseRegister: baseRegister,
		timeout:      timeout,
	}
}

func (r *ModbusDAQReader) Open() error {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     r.url,
		Timeout: r.timeout,
	})
	if err != nil {
		return fmt.Errorf("create modbus client: %w", err)
	}
	if err := client.SetUnitId(r.unitId); err != nil {
		return fmt.Errorf("set unit id %d: %w", r.unitId, err)
	}
	if err := client.Open(); err != nil {
		return fmt.Errorf("open %s: %w", r.url, err)
	}
	r.client = client
	return nil
}

func (r *ModbusDAQReader) ReadVolts(in Input) (float64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("modbus daq not open")
	}
	register := r.baseRegister + uint16(in.Board*ChannelsPerBoard+in.Channel)
	millivolts, err := r.client.ReadRegister(register, modbus.HOLDING_REGISTER)
	if err != nil {
		return 0, fmt.Errorf("read register %d: %w", register, err)
	}
	return float64(millivolts) / 1000.0, nil
}

func (r *ModbusDAQReader) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
