// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle
// notifications, and OSCommandRunner runs processes through os/exec. The
// repository client uses it to drive git without interactive prompts.
package execshell
