package mqtt

import "fmt"

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Publish sends payload to topic.
//
// Retained messages are kept by the broker and delivered to every new
// subscriber; use them for state (device configs, system status), not for
// events.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishRetained publishes a retained message with the configured QoS.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, c.QoS(), true)
}

// PublishDeviceConfig pushes a device's full config document to its
// retained config topic, so a device that subscribes later still gets it.
func (c *Client) PublishDeviceConfig(deviceID string, payload []byte) error {
	return c.PublishRetained(c.topics.DeviceConfig(deviceID), payload)
}

// PublishDeviceRegistered announces a newly registered device.
func (c *Client) PublishDeviceRegistered(deviceID string, payload []byte) error {
	return c.Publish(c.topics.DeviceRegistered(deviceID), payload, c.QoS(), false)
}
