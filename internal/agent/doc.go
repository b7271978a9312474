// Package agent polls the cloud for commands and reports their results.
//
// Each cycle is a GET on the poll URL. A non-empty X-COMMAND response
// header names the command to run and X-COMMAND-PARAM its parameter.
// The result is POSTed to the report URL as X-COMMAND, X-COMMAND-PARAM
// and X-COMMAND-RESULT headers plus a JSON body.
//
// The report is sent from the notify callback, so a REBOOT or HARDRESET
// is reported before the node restarts. The command itself runs after
// the poll exchange has returned; running it from the poll's completion
// callback would hold the request pipeline while the report needs it.
package agent
