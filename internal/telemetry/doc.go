// Package telemetry reports who the relay node is and how it is doing.
//
// A Builder turns the static identity (device ID, API key, application
// version) and a live Snapshot from a Probe into the base headers sent
// with every outbound request. Readings are taken fresh on each call,
// never cached.
//
// HostProbe reads a Linux host through gopsutil and /proc. A Recorder
// periodically writes snapshots to InfluxDB.
package telemetry
