package logger

import (
	"fmt"
	"time"
)

// ANSI color codes. Most modern terminals (including Windows 10+) support these.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func line(color, symbol, tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s%s%s %s\n",
		dim, timestamp(), reset, bold, tag, reset, color, symbol, reset, msg)
}

// Info prints an informational message with a tag.
func Info(tag, msg string) {
	line(cyan, "·", tag, msg)
}

// Success prints a success message with a tag.
func Success(tag, msg string) {
	line(green, "✓", tag, msg)
}

// Warn prints a warning message with a tag.
func Warn(tag, msg string) {
	line(yellow, "!", tag, msg)
}

// Error prints an error message with a tag.
func Error(tag, msg string) {
	line(red, "✗", tag, msg)
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("\n%s%s  Echoes Planner%s %s(%s)%s\n", bold, cyan, reset, dim, version, reset)
	fmt.Printf("%s  planetary mining income & logistics%s\n\n", dim, reset)
}

// Section prints a section divider.
func Section(name string) {
	fmt.Printf("\n%s── %s ──%s\n", bold, name, reset)
}

// Stats prints a key/value stat line.
func Stats(label string, value interface{}) {
	fmt.Printf("  %s%s:%s %v\n", dim, label, reset, value)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("%s%s→%s Listening on %shttp://%s%s\n", bold, green, reset, cyan, addr, reset)
}
