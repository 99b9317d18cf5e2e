package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatEnv   = "env"
)

// Environment variables describing a resolved repository.
const (
	EnvRepositoryURL = "CODEARTIFACT_REPOSITORY_URL"
	EnvAuthToken     = "CODEARTIFACT_AUTH_TOKEN"
)

const redacted = "<redacted>"

type descriptorView struct {
	Endpoint        string `json:"endpoint"`
	AuthScheme      string `json:"authScheme"`
	Token           string `json:"token"`
	Domain          string `json:"domain"`
	DomainOwner     string `json:"domainOwner"`
	Repository      string `json:"repository"`
	Profile         string `json:"profile"`
	DurationSeconds int    `json:"durationSeconds"`
}

func newDescriptorView(d *codeartifact.RepositoryDescriptor, showToken bool) descriptorView {
	token := redacted
	if showToken {
		token = d.Token
	}
	return descriptorView{
		Endpoint:        d.EndpointURL,
		AuthScheme:      d.AuthScheme,
		Token:           token,
		Domain:          d.IssuedFor.Domain,
		DomainOwner:     d.IssuedFor.DomainOwner,
		Repository:      d.IssuedFor.Repository,
		Profile:         d.IssuedFor.Profile,
		DurationSeconds: d.IssuedFor.DurationSeconds,
	}
}

func encodeDescriptor(output string, d *codeartifact.RepositoryDescriptor, showToken bool) ([]byte, error) {
	var data []byte
	var err error
	switch output {
	case FormatJSON:
		data, err = json.MarshalIndent(newDescriptorView(d, showToken), "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(newDescriptorView(d, showToken))
	case FormatTable:
		data = encodeDescriptorAsTable(newDescriptorView(d, showToken))
	case FormatEnv:
		data = EncodeEnv(d)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding repository descriptor as %q failed: %w", output, err)
	}
	return data, nil
}

func encodeDescriptorAsTable(view descriptorView) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Repository", "Domain", "Owner", "Endpoint", "Token", "Duration"})
	t.AppendRow(table.Row{view.Repository, view.Domain, view.DomainOwner, view.Endpoint, view.Token, strconv.Itoa(view.DurationSeconds) + "s"})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes()
}

// EncodeEnv renders the descriptor as shell export statements that are safe to eval.
func EncodeEnv(d *codeartifact.RepositoryDescriptor) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "export %s=%s\n", EnvRepositoryURL, shellQuote(d.EndpointURL))
	fmt.Fprintf(&buf, "export %s=%s\n", EnvAuthToken, shellQuote(d.Token))
	return buf.Bytes()
}

// shellQuote single quotes s for POSIX shells, nothing inside is expanded.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
