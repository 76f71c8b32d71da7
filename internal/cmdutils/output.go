package cmdutils

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Printer renders command results on Out in the selected format.
type Printer struct {
	Format string
	Out    io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{Format: FormatYAML, Out: out}
}

func (p *Printer) Print(v any) error {
	var (
		data []byte
		err  error
	)

	switch p.Format {
	case FormatYAML, "":
		data, err = yaml.Marshal(v)
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown output format %q, use %s or %s", p.Format, FormatYAML, FormatJSON)
	}
	if err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}

	_, err = p.Out.Write(data)

	return err
}

// Message prints a plain line of text, whatever the format.
func (p *Printer) Message(format string, args ...any) {
	_, _ = fmt.Fprintf(p.Out, format+"\n", args...)
}
