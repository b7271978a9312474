package mqtt

import (
	"fmt"
	"strings"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// maxPayloadSize caps outbound payloads. Relay messages are small JSON
// documents; anything near this is a bug.
const maxPayloadSize = 64 << 10

// Publish sends payload to topic and waits for the broker to take it.
// topic must be a concrete topic under this node's subtree, built with
// Topics. Results go out with retained=false; status and health with
// retained=true.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := c.checkTopic(topic); err != nil {
		return err
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcard in publish topic %q", ErrInvalidTopic, topic)
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	return await(c.client.Publish(topic, qos, retained, payload), "publish "+topic)
}

// checkTopic rejects empty topics and, once the client is bound to a
// device, any topic outside graylogic/relay/{device_id}/.
func (c *Client) checkTopic(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if c.deviceID == "" {
		return nil
	}
	if !strings.HasPrefix(topic, Topics{}.Node(c.deviceID)) {
		return fmt.Errorf("%w: %q", ErrForeignTopic, topic)
	}
	return nil
}

// await waits for a paho token and maps its outcome onto the package
// errors.
func await(token pahomqtt.Token, what string) error {
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s after %v", ErrBrokerTimeout, what, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBrokerRejected, what, err)
	}
	return nil
}
