package hass

import (
	"encoding/json"
	"fmt"

	"tariffpilot/internal/core/port"

	"go.uber.org/zap"
)

// Host service names. They mirror the host's domain/service pairs.
const (
	ServiceSetNumber    = "number/set_value"
	ServiceSelectOption = "select/select_option"
	ServiceTurnOn       = "switch/turn_on"
	ServiceTurnOff      = "switch/turn_off"
	ServiceSetTime      = "time/set_value"
)

type serviceCallPayload struct {
	Service string         `json:"service"`
	Data    map[string]any `json:"data"`
}

// MQTTServiceCaller invokes host services by publishing call payloads to
// the configured service topic. Call blocks until the broker confirms the
// publish; CallAsync hands the confirmation to the callback from a
// background goroutine.
type MQTTServiceCaller struct {
	client       *StatestreamClient
	serviceTopic string
	logger       *zap.Logger
}

func NewMQTTServiceCaller(client *StatestreamClient, serviceTopic string, logger *zap.Logger) *MQTTServiceCaller {
	return &MQTTServiceCaller{
		client:       client,
		serviceTopic: serviceTopic,
		logger:       logger,
	}
}

func (s *MQTTServiceCaller) Call(service string, data map[string]any) (*port.ServiceResult, error) {
	payload, err := json.Marshal(serviceCallPayload{Service: service, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode service call %s: %w", service, err)
	}
	if err := s.client.publish(s.serviceTopic, payload); err != nil {
		return &port.ServiceResult{Success: false}, err
	}
	return &port.ServiceResult{Success: true}, nil
}

func (s *MQTTServiceCaller) CallAsync(service string, data map[string]any, callback func(*port.ServiceResult, error)) {
	go func() {
		result, err := s.Call(service, data)
		if callback != nil {
			callback(result, err)
		}
	}()
}

// DryRunServiceCaller logs every call instead of invoking the host.
type DryRunServiceCaller struct {
	Logger *zap.Logger
}

func (s *DryRunServiceCaller) Call(service string, data map[string]any) (*port.ServiceResult, error) {
	s.Logger.Info("dry_run: service call", zap.String("service", service), zap.Any("data", data))
	return nil, nil
}

func (s *DryRunServiceCaller) CallAsync(service string, data map[string]any, callback func(*port.ServiceResult, error)) {
	s.Logger.Info("dry_run: service call (async)", zap.String("service", service), zap.Any("data", data))
	if callback != nil {
		callback(nil, nil)
	}
}

// ensure interface compliance
var _ port.ServiceCaller = (*MQTTServiceCaller)(nil)
var _ port.ServiceCaller = (*DryRunServiceCaller)(nil)
