package mcpserver

import "encoding/json"

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	WebsiteURL  string      `json:"websiteUrl,omitempty"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how to install and run the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument is a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable is an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
	Format      string `json:"format,omitempty"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest creates the server.json manifest. An empty version
// becomes 0.0.0.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	env := []EnvVariable{
		{Name: "DEVFLOW_CONFIG", Description: "Path to a devflow config file (toml, yaml or json)", Format: "filepath"},
	}
	args := []Argument{{Type: "positional", Value: "mcp"}}

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/devflow",
		Title:       "DevFlow",
		Description: "Git commit analytics: work patterns, file hotspots, productivity scoring and team insights",
		Version:     version,
		WebsiteURL:  "https://github.com/panbanda/devflow",
		Repository:  &Repository{URL: "https://github.com/panbanda/devflow", Source: "github"},
		Packages: []Package{
			{
				RegistryType:         "oci",
				Identifier:           "ghcr.io/panbanda/devflow:" + version,
				PackageArguments:     args,
				EnvironmentVariables: env,
				Transport:            Transport{Type: "stdio"},
			},
		},
	}, "", "  ")
}
