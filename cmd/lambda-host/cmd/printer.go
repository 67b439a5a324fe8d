package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/lambda-bridge/domain/entities"
)

// Printer formats command output as json, yaml or table.
type Printer struct {
	writer io.Writer
	format string
}

// NewPrinter creates a printer writing to w. Unknown formats fall back to
// json.
func NewPrinter(w io.Writer, format string) *Printer {
	return &Printer{writer: w, format: format}
}

// PrintManifest prints a module manifest.
func (p *Printer) PrintManifest(m entities.ModuleManifest) error {
	switch p.format {
	case "yaml":
		return p.printYAML(m)
	case "table":
		tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "HANDLER\tDESCRIPTION\n")
		for _, h := range m.Handlers {
			fmt.Fprintf(tw, "%s.%s\t%s\n", m.Module, h.Name, h.Description)
		}
		return tw.Flush()
	default:
		return p.printJSON(m)
	}
}

// PrintRaw prints an already encoded JSON document, reformatted as YAML when
// requested.
func (p *Printer) PrintRaw(data []byte) error {
	if p.format == "yaml" {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		return p.printYAML(v)
	}
	_, err := fmt.Fprintf(p.writer, "%s\n", data)
	return err
}

// PrintException prints a host exception in the Lambda error body shape.
func (p *Printer) PrintException(exc *entities.HostException) error {
	if p.format == "yaml" {
		return p.printYAML(map[string]string{"errorType": exc.Type, "errorMessage": exc.Message})
	}
	return p.printJSON(exc)
}

func (p *Printer) printJSON(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) printYAML(v any) error {
	enc := yaml.NewEncoder(p.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
