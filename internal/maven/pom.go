// Package maven reads CodeArtifact properties from a Maven project and writes
// Maven settings that point a build at a resolved repository.
package maven

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	repositoryv1alpha1 "github.com/brcolow/codeartifact-maven-extension/internal/config/repository/v1alpha1"
)

// Project properties read from <project><properties>.
const (
	PropertyDomain          = "codeartifact.domain"
	PropertyDomainOwner     = "codeartifact.domainOwner"
	PropertyRepository      = "codeartifact.repository"
	PropertyProfile         = "codeartifact.profile"
	PropertyRegion          = "codeartifact.region"
	PropertyDurationSeconds = "codeartifact.durationSeconds"
	PropertyPrune           = "codeartifact.prune"
)

// POM is the part of a Maven project model needed to configure CodeArtifact.
type POM struct {
	GroupID    string
	ArtifactID string
	Version    string
	// Properties holds the project properties with ${...} references expanded.
	Properties map[string]string
}

type pomXML struct {
	XMLName    xml.Name      `xml:"project"`
	GroupID    string        `xml:"groupId"`
	ArtifactID string        `xml:"artifactId"`
	Version    string        `xml:"version"`
	Parent     *parentXML    `xml:"parent"`
	Properties propertiesXML `xml:"properties"`
}

type parentXML struct {
	GroupID string `xml:"groupId"`
	Version string `xml:"version"`
}

type propertiesXML struct {
	Entries []propertyXML `xml:",any"`
}

type propertyXML struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ParsePOM parses a Maven project model. Group id and version are inherited from
// the parent when the project does not declare them.
func ParsePOM(r io.Reader) (*POM, error) {
	var doc pomXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	pom := &POM{
		GroupID:    strings.TrimSpace(doc.GroupID),
		ArtifactID: strings.TrimSpace(doc.ArtifactID),
		Version:    strings.TrimSpace(doc.Version),
		Properties: make(map[string]string, len(doc.Properties.Entries)),
	}
	if doc.Parent != nil {
		if pom.GroupID == "" {
			pom.GroupID = strings.TrimSpace(doc.Parent.GroupID)
		}
		if pom.Version == "" {
			pom.Version = strings.TrimSpace(doc.Parent.Version)
		}
	}
	for _, entry := range doc.Properties.Entries {
		pom.Properties[entry.XMLName.Local] = strings.TrimSpace(entry.Value)
	}
	expanded := make(map[string]string, len(pom.Properties))
	for name, value := range pom.Properties {
		expanded[name] = pom.expand(value)
	}
	pom.Properties = expanded
	return pom, nil
}

var reference = regexp.MustCompile(`\$\{([^}]+)\}`)

// expand replaces ${env.NAME}, ${project.*} and ${property} references once.
// Unknown references are left untouched, as Maven does.
func (p *POM) expand(value string) string {
	return reference.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-1]
		switch {
		case strings.HasPrefix(name, "env."):
			if v, ok := os.LookupEnv(strings.TrimPrefix(name, "env.")); ok {
				return v
			}
		case name == "project.groupId":
			return p.GroupID
		case name == "project.artifactId":
			return p.ArtifactID
		case name == "project.version":
			return p.Version
		default:
			if v, ok := p.Properties[name]; ok && !reference.MatchString(v) {
				return v
			}
		}
		return match
	})
}

// RepositoryConfig returns the CodeArtifact configuration declared by the project properties.
// Fields without a property stay unset.
func (p *POM) RepositoryConfig() (*repositoryv1alpha1.Config, error) {
	cfg := &repositoryv1alpha1.Config{
		Domain:      p.Properties[PropertyDomain],
		DomainOwner: p.Properties[PropertyDomainOwner],
		Repository:  p.Properties[PropertyRepository],
		Profile:     p.Properties[PropertyProfile],
		Region:      p.Properties[PropertyRegion],
	}
	if value, ok := p.Properties[PropertyDurationSeconds]; ok {
		duration, err := repositoryv1alpha1.ParseDurationSeconds(value)
		if err != nil {
			return nil, propertyError(PropertyDurationSeconds, err)
		}
		cfg.DurationSeconds = duration
	}
	if value, ok := p.Properties[PropertyPrune]; ok {
		prune, err := repositoryv1alpha1.ParsePrune(value)
		if err != nil {
			return nil, propertyError(PropertyPrune, err)
		}
		cfg.Prune = prune
	}
	return cfg, nil
}

func propertyError(property string, err error) error {
	return fmt.Errorf("project property %s: %w", property, err)
}

// Coordinates renders groupId:artifactId:version.
func (p *POM) Coordinates() string {
	return fmt.Sprintf("%s:%s:%s", p.GroupID, p.ArtifactID, p.Version)
}

// Identity returns the CodeArtifact package identity of the project.
func (p *POM) Identity() codeartifact.PackageIdentity {
	return codeartifact.PackageIdentity{Namespace: p.GroupID, Name: p.ArtifactID}
}
