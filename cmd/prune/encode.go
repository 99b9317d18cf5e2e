package prune

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

func encodeReport(output string, report *codeartifact.PruneReport) ([]byte, error) {
	var data []byte
	var err error
	switch output {
	case FormatJSON:
		data, err = json.MarshalIndent(report, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(report)
	case FormatTable:
		data = encodeReportAsTable(report)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding prune report as %q failed: %w", output, err)
	}
	return data, nil
}

func encodeReportAsTable(report *codeartifact.PruneReport) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Package", "Outcome", "Unlisted", "Deleted"})
	for _, pkg := range report.Packages {
		unlisted := make([]string, 0, len(pkg.Versions))
		for _, v := range pkg.Versions {
			unlisted = append(unlisted, v.Version)
		}
		t.AppendRow(table.Row{pkg.Package.String(), string(pkg.Outcome), strings.Join(unlisted, ", "), strings.Join(pkg.Deleted, ", ")})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d deleted", report.DeletedVersions())})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes()
}
