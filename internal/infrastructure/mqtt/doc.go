// Package mqtt provides MQTT client connectivity for a relay node.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing and subscribing, confined to the node's own topics
//   - Subscriptions restored after every reconnect
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	graylogic/relay/{device_id}/command   commands in (JSON)
//	graylogic/relay/{device_id}/result    results out (JSON)
//	graylogic/relay/{device_id}/health    retained status, periodic health, LWT
//
// # Security Considerations
//
//   - A client bound to a device ID refuses topics of other nodes
//     (ErrForeignTopic), so a misbuilt topic cannot drive another relay
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - A command topic can drive outputs and reset the node; restrict it
//     in the broker ACL to the controller's credentials
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.Command(cfg.Device.ID), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt
