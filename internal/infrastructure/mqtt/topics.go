package mqtt

import "fmt"

// TopicPrefix is the base for every relay node topic.
//
// Layout: graylogic/relay/{device_id}/{command|result|health}
const TopicPrefix = "graylogic/relay"

// Topics provides builders for relay node MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Command("relay-0001")
//	// Returns: "graylogic/relay/relay-0001/command"
type Topics struct{}

// Node returns the prefix, with trailing slash, of every topic owned by
// deviceID.
func (Topics) Node(deviceID string) string {
	return TopicPrefix + "/" + deviceID + "/"
}

// Command returns the topic a node receives commands on.
func (Topics) Command(deviceID string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefix, deviceID)
}

// Result returns the topic a node publishes command results to.
func (Topics) Result(deviceID string) string {
	return fmt.Sprintf("%s/%s/result", TopicPrefix, deviceID)
}

// Health returns the retained status topic of a node. The broker
// publishes the node's Last Will here.
func (Topics) Health(deviceID string) string {
	return fmt.Sprintf("%s/%s/health", TopicPrefix, deviceID)
}

// AllCommands matches the command topic of every node.
func (Topics) AllCommands() string {
	return TopicPrefix + "/+/command"
}

// AllResults matches the result topic of every node.
func (Topics) AllResults() string {
	return TopicPrefix + "/+/result"
}

// AllHealth matches the health topic of every node.
func (Topics) AllHealth() string {
	return TopicPrefix + "/+/health"
}

// AllTopics matches every relay topic.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
