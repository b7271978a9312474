// Package settings stores the relay node's device configuration.
//
// Values are small strings keyed by name and tagged with a scope:
// ScopeNetwork for connection credentials, ScopeDevice for everything
// else. A factory reset calls ForgetNetwork and then Erase, leaving an
// empty table that the node repopulates on next provisioning.
package settings
