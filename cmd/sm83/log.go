package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// newLogger builds the stderr logger. Colors are used only when out is a
// terminal.
func newLogger(level string, out *os.File) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	tty := term.IsTerminal(int(out.Fd())) //nolint:gosec // G115: file descriptors fit in int

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		ForceColors:   tty,
		DisableColors: !tty,
		FullTimestamp: true,
	})
	return l, nil
}
