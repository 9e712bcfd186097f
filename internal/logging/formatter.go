package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scenecast/scenecast/internal/term"
)

// newFormatter returns a JSON formatter when json is true, else the
// colorized text formatter.
func newFormatter(json bool) logrus.Formatter {
	if json {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"}
	}
	return &textFormatter{}
}

// colorFor maps a display kind to its ANSI color, read live from the term
// package so that --no-color/--color take effect without reconstructing
// the formatter.
func colorFor(kind string) string {
	switch kind {
	case "INFO":
		return term.Blue
	case "SUCCESS":
		return term.Green
	case "WARN":
		return term.Yellow
	case "ERROR":
		return term.Red
	case "RENDER":
		return term.Magenta
	case "OUTLIER":
		return term.Orange
	case "DEBUG":
		return term.Cyan
	default:
		return ""
	}
}

// textFormatter renders a logrus.Entry the same way the original plain-text
// logger did: "<timestamp> [<KIND>] <message>", with the bracketed kind
// colorized when colors are enabled.
type textFormatter struct{}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	kind, _ := e.Data["kind"].(string)
	if kind == "" {
		kind = e.Level.String()
	}
	ts := e.Time.Format("2006-01-02 15:04:05")
	color := colorFor(kind)

	var line string
	if color != "" {
		line = fmt.Sprintf("%s %s[%s]%s %s\n", ts, color, kind, term.NC, e.Message)
	} else {
		line = fmt.Sprintf("%s [%s] %s\n", ts, kind, e.Message)
	}
	return []byte(line), nil
}
