// Package logx is the agent's structured logging.
//
// Logger wraps a zerolog logger; fields attached with With are rendered on
// every line. A Service owns the process sinks (a readable console and a
// JSON log file), built once from Config and released by Close.
package logx
