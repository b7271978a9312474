package mqtt

import "errors"

var (
	// ErrNotConnected means the broker link is down. Callers drop the
	// message; nothing is buffered for later.
	ErrNotConnected = errors.New("mqtt: not connected to broker")

	// ErrConnectionFailed wraps the cause of a failed initial connect.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrInvalidTopic covers empty topics and wildcard publish topics.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")

	// ErrForeignTopic is returned for a topic outside this node's
	// graylogic/relay/{device_id}/ subtree.
	ErrForeignTopic = errors.New("mqtt: topic belongs to another node")

	// ErrInvalidQoS is returned for a QoS above 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS")

	// ErrPayloadTooLarge is returned for payloads over maxPayloadSize.
	ErrPayloadTooLarge = errors.New("mqtt: payload too large")

	// ErrBrokerTimeout means the broker did not acknowledge in time.
	ErrBrokerTimeout = errors.New("mqtt: broker did not acknowledge")

	// ErrBrokerRejected wraps an error reported on the paho token.
	ErrBrokerRejected = errors.New("mqtt: broker rejected request")
)
