// Package system carries out the node-level effects of terminal
// commands: restart and factory reset.
//
// The command executor hands a terminal Intent to Controller.Apply after
// the caller has been notified. Apply runs the settle delays and the
// destructive steps in a fixed order:
//
//	restart:        settle, restart
//	factory reset:  settle, forget network, settle, erase config, settle, restart
//
// Restart itself is delegated to a Restarter. In production that is an
// ExecRestarter, which signals the main run loop; the loop shuts the
// node down cleanly and re-executes the binary. Once started, neither
// sequence can be cancelled: step failures are logged and the restart
// still happens.
package system
