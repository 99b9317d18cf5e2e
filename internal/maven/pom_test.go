package maven_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	"github.com/brcolow/codeartifact-maven-extension/internal/maven"
)

const projectFile = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>com.acme</groupId>
    <artifactId>parent</artifactId>
    <version>2.3.0</version>
  </parent>
  <artifactId>service</artifactId>
  <properties>
    <codeartifact.domain>acme</codeartifact.domain>
    <codeartifact.domainOwner>${env.CODEARTIFACT_TEST_OWNER}</codeartifact.domainOwner>
    <codeartifact.repository>${project.artifactId}-repo</codeartifact.repository>
    <codeartifact.durationSeconds>
      ${token.lifetime}
    </codeartifact.durationSeconds>
    <token.lifetime>3600</token.lifetime>
    <codeartifact.prune>true</codeartifact.prune>
    <unrelated>${does.not.exist}</unrelated>
  </properties>
</project>
`

func TestParsePOM(t *testing.T) {
	t.Setenv("CODEARTIFACT_TEST_OWNER", "111122223333")

	pom, err := maven.ParsePOM(strings.NewReader(projectFile))
	require.NoError(t, err)

	assert.Equal(t, "com.acme:service:2.3.0", pom.Coordinates())
	assert.Equal(t, codeartifact.PackageIdentity{Namespace: "com.acme", Name: "service"}, pom.Identity())
	assert.Equal(t, "111122223333", pom.Properties[maven.PropertyDomainOwner])
	assert.Equal(t, "service-repo", pom.Properties[maven.PropertyRepository])
	assert.Equal(t, "3600", pom.Properties[maven.PropertyDurationSeconds])
	assert.Equal(t, "${does.not.exist}", pom.Properties["unrelated"])

	cfg, err := pom.RepositoryConfig()
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Domain)
	assert.Equal(t, "111122223333", cfg.DomainOwner)
	assert.Equal(t, "service-repo", cfg.Repository)
	assert.Empty(t, cfg.Profile)
	require.NotNil(t, cfg.DurationSeconds)
	assert.EqualValues(t, 3600, *cfg.DurationSeconds)
	require.NotNil(t, cfg.Prune)
	assert.True(t, bool(*cfg.Prune))
}

func TestRepositoryConfigRejectsInvalidProperties(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    string
		field    string
	}{
		{name: "non numeric duration", property: maven.PropertyDurationSeconds, value: "12h", field: "durationSeconds"},
		{name: "duration above ceiling", property: maven.PropertyDurationSeconds, value: "43201", field: "durationSeconds"},
		{name: "zero duration", property: maven.PropertyDurationSeconds, value: "0", field: "durationSeconds"},
		{name: "prune not boolean", property: maven.PropertyPrune, value: "yes please", field: "prune"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pom := &maven.POM{Properties: map[string]string{tt.property: tt.value}}
			_, err := pom.RepositoryConfig()
			var cfgErr *codeartifact.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.ErrorContains(t, err, tt.property)
		})
	}
}

func TestParsePOMMinimal(t *testing.T) {
	pom, err := maven.ParsePOM(strings.NewReader(`<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version></project>`))
	require.NoError(t, err)
	assert.Equal(t, "g:a:1", pom.Coordinates())
	assert.Empty(t, pom.Properties)

	_, err = maven.ParsePOM(strings.NewReader(`<project><unclosed>`))
	assert.Error(t, err)
}
