package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"coursarr/internal/domain/consts"

	"github.com/rs/zerolog"
)

var (
	Level int = -1 // Pre initialization
	mu    sync.Mutex
)

// E prints and logs an error message with caller information.
func E(format string, args ...interface{}) string {
	mu.Lock()
	defer mu.Unlock()

	pc, file, line, _ := runtime.Caller(1)
	file = filepath.Base(file)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	var b strings.Builder
	b.WriteString(consts.RedError)

	// Write formatted message
	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteRune('[')
	b.WriteString(consts.ColorBlue)
	b.WriteString("Function: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(funcName)
	b.WriteString(" - ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("File: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(file)
	b.WriteString(" : ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("Line: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(strconv.Itoa(line))
	b.WriteString("]\n")

	msg := b.String()

	fmt.Print(msg)
	writeLog(zerolog.ErrorLevel, msg)

	return msg
}

// W prints and logs a warning message.
func W(format string, args ...interface{}) string {
	mu.Lock()
	defer mu.Unlock()

	var b strings.Builder
	b.WriteString(consts.YellowWarn)

	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteString("\n")
	msg := b.String()
	fmt.Print(msg)
	writeLog(zerolog.WarnLevel, msg)

	return msg
}

// S prints and logs a success message. Levels above zero only print when
// below the debug level.
func S(l int, format string, args ...interface{}) string {
	if l > 0 && l >= Level {
		return ""
	}

	mu.Lock()
	defer mu.Unlock()

	var b strings.Builder
	b.WriteString(consts.GreenSuccess)

	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteString("\n")
	msg := b.String()
	fmt.Print(msg)
	writeLog(zerolog.InfoLevel, msg)

	return msg
}

// D prints and logs a debug message with caller information when l is below
// the debug level.
func D(l int, format string, args ...interface{}) string {
	if l >= Level {
		return ""
	}

	mu.Lock()
	defer mu.Unlock()

	pc, file, line, _ := runtime.Caller(1)
	file = filepath.Base(file)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	var b strings.Builder
	b.WriteString(consts.YellowDebug)

	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteRune('[')
	b.WriteString(consts.ColorBlue)
	b.WriteString("Function: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(funcName)
	b.WriteString(" - ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("File: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(file)
	b.WriteString(" : ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("Line: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(strconv.Itoa(line))
	b.WriteString("]\n")

	msg := b.String()

	fmt.Print(msg)
	writeLog(zerolog.DebugLevel, msg)

	return msg
}

// I prints and logs an info message.
func I(format string, args ...interface{}) string {
	mu.Lock()
	defer mu.Unlock()

	var b strings.Builder
	b.WriteString(consts.BlueInfo)

	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteString("\n")
	msg := b.String()
	fmt.Print(msg)
	writeLog(zerolog.InfoLevel, msg)

	return msg
}

// P prints and logs a plain message with no tag.
func P(format string, args ...interface{}) string {
	mu.Lock()
	defer mu.Unlock()

	var b strings.Builder

	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteString("\n")
	msg := b.String()
	fmt.Print(msg)
	writeLog(zerolog.InfoLevel, msg)

	return msg
}
