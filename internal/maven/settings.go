package maven

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
)

const (
	// RepositoryID is the id of the server, profile and repositories pointing at CodeArtifact.
	RepositoryID = "codeartifact"

	// MirrorID is the id of the mirror replacing Maven Central.
	MirrorID   = "central-mirror"
	MirrorName = "CodeArtifact Maven Central mirror"
	MirrorOf   = "central"

	settingsNamespace      = "http://maven.apache.org/SETTINGS/1.2.0"
	settingsSchemaLocation = "http://maven.apache.org/SETTINGS/1.2.0 https://maven.apache.org/xsd/settings-1.2.0.xsd"
)

// Settings is a Maven settings document.
type Settings struct {
	XMLName         xml.Name  `xml:"settings"`
	Xmlns           string    `xml:"xmlns,attr,omitempty"`
	XmlnsXSI        string    `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation  string    `xml:"xsi:schemaLocation,attr,omitempty"`
	LocalRepository string    `xml:"localRepository,omitempty"`
	Servers         []Server  `xml:"servers>server"`
	Mirrors         []Mirror  `xml:"mirrors>mirror"`
	Profiles        []Profile `xml:"profiles>profile"`
	ActiveProfiles  []string  `xml:"activeProfiles>activeProfile"`
}

type Server struct {
	ID       string `xml:"id"`
	Username string `xml:"username"`
	Password string `xml:"password"`
}

type Mirror struct {
	ID       string `xml:"id"`
	Name     string `xml:"name,omitempty"`
	URL      string `xml:"url"`
	MirrorOf string `xml:"mirrorOf"`
}

type Profile struct {
	ID                 string            `xml:"id"`
	Properties         ProfileProperties `xml:"properties"`
	Repositories       []Repository      `xml:"repositories>repository"`
	PluginRepositories []Repository      `xml:"pluginRepositories>pluginRepository"`
}

type ProfileProperties struct {
	// AltDeploymentRepository makes "mvn deploy" publish to the repository
	// without a distributionManagement section in the project.
	AltDeploymentRepository string `xml:"altDeploymentRepository,omitempty"`
}

type Repository struct {
	ID        string           `xml:"id"`
	URL       string           `xml:"url"`
	Releases  RepositoryPolicy `xml:"releases"`
	Snapshots RepositoryPolicy `xml:"snapshots"`
}

type RepositoryPolicy struct {
	Enabled        bool   `xml:"enabled"`
	UpdatePolicy   string `xml:"updatePolicy,omitempty"`
	ChecksumPolicy string `xml:"checksumPolicy,omitempty"`
}

// SettingsOption customizes the generated settings.
type SettingsOption func(*Settings)

// WithLocalRepository sets the local repository directory of the build.
func WithLocalRepository(path string) SettingsOption {
	return func(s *Settings) {
		s.LocalRepository = path
	}
}

// NewSettings builds settings that authenticate against the resolved repository,
// route Maven Central through it and make it the deployment target.
func NewSettings(descriptor *codeartifact.RepositoryDescriptor, opts ...SettingsOption) (*Settings, error) {
	if descriptor == nil || descriptor.EndpointURL == "" {
		return nil, errors.New("a resolved repository endpoint is required")
	}
	if descriptor.Token == "" {
		return nil, errors.New("a resolved authorization token is required")
	}

	policy := RepositoryPolicy{Enabled: true, UpdatePolicy: "always", ChecksumPolicy: "warn"}
	repository := Repository{
		ID:        RepositoryID,
		URL:       descriptor.EndpointURL,
		Releases:  policy,
		Snapshots: policy,
	}

	s := &Settings{
		Xmlns:          settingsNamespace,
		XmlnsXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: settingsSchemaLocation,
		Servers: []Server{
			{ID: RepositoryID, Username: descriptor.AuthScheme, Password: descriptor.Token},
			{ID: MirrorID, Username: descriptor.AuthScheme, Password: descriptor.Token},
		},
		Mirrors: []Mirror{
			{ID: MirrorID, Name: MirrorName, URL: descriptor.EndpointURL, MirrorOf: MirrorOf},
		},
		Profiles: []Profile{
			{
				ID: RepositoryID,
				Properties: ProfileProperties{
					AltDeploymentRepository: fmt.Sprintf("%s::default::%s", RepositoryID, descriptor.EndpointURL),
				},
				Repositories:       []Repository{repository},
				PluginRepositories: []Repository{repository},
			},
		},
		ActiveProfiles: []string{RepositoryID},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Encode writes the settings document including the XML header.
func (s *Settings) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes the settings to path, readable by the current user only,
// because the document contains the authorization token.
func (s *Settings) WriteFile(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	// an existing file keeps its mode on open
	if err := f.Chmod(0o600); err != nil {
		return fmt.Errorf("failed to restrict settings file permissions: %w", err)
	}
	return s.Encode(f)
}
