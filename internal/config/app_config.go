package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/snapshot/internal/filter"
	"github.com/temirov/snapshot/internal/output"
	"github.com/temirov/snapshot/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Tree          SnapshotConfiguration      `mapstructure:"tree"`
	Documentation DocumentationConfiguration `mapstructure:"docs"`
}

// SnapshotConfiguration defines options shared by the tree and docs commands.
type SnapshotConfiguration struct {
	Output        string             `mapstructure:"output"`
	Ignore        []string           `mapstructure:"ignore"`
	Exclude       []string           `mapstructure:"exclude"`
	UseIgnoreFile *bool              `mapstructure:"use_ignore_file"`
	Copy          *bool              `mapstructure:"copy"`
	Tokens        TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// DocumentationConfiguration extends SnapshotConfiguration with the documentation rules and framing text.
type DocumentationConfiguration struct {
	SnapshotConfiguration `mapstructure:",squash"`
	Directories           []string             `mapstructure:"directories"`
	Files                 []string             `mapstructure:"files"`
	Extensions            []string             `mapstructure:"extensions"`
	Project               ProjectConfiguration `mapstructure:"project"`
	SetupSteps            []string             `mapstructure:"setup_steps"`
	ResumePrompt          string               `mapstructure:"resume_prompt"`
}

// ProjectConfiguration holds the static project identification printed in the documentation header.
type ProjectConfiguration struct {
	Name      string `mapstructure:"name"`
	Type      string `mapstructure:"type"`
	Model     string `mapstructure:"model"`
	SourceURL string `mapstructure:"source_url"`
}

// LoadApplicationConfiguration loads configuration from the global file and then the local or explicit file.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	return merged.Merge(localConfig), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName)
}

// loadConfigurationFromPath decodes path. A missing file is only an error when it was requested explicitly.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Tree = result.Tree.Merge(override.Tree)
	result.Documentation = result.Documentation.Merge(override.Documentation)
	return result
}

// Merge overlays override onto the receiver. Ignore lists replace, exclude lists accumulate.
func (configuration SnapshotConfiguration) Merge(override SnapshotConfiguration) SnapshotConfiguration {
	result := configuration
	if override.Output != "" {
		result.Output = override.Output
	}
	if len(override.Ignore) > 0 {
		result.Ignore = DeduplicatePatterns(override.Ignore)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = DeduplicatePatterns(append(append([]string{}, result.Exclude...), override.Exclude...))
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

// Merge overlays override onto the receiver.
func (configuration DocumentationConfiguration) Merge(override DocumentationConfiguration) DocumentationConfiguration {
	result := configuration
	result.SnapshotConfiguration = result.SnapshotConfiguration.Merge(override.SnapshotConfiguration)
	if len(override.Directories) > 0 {
		result.Directories = DeduplicatePatterns(override.Directories)
	}
	if len(override.Files) > 0 {
		result.Files = DeduplicatePatterns(override.Files)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = DeduplicatePatterns(override.Extensions)
	}
	result.Project = result.Project.merge(override.Project)
	if len(override.SetupSteps) > 0 {
		result.SetupSteps = append([]string{}, override.SetupSteps...)
	}
	if override.ResumePrompt != "" {
		result.ResumePrompt = override.ResumePrompt
	}
	return result
}

func (configuration ProjectConfiguration) merge(override ProjectConfiguration) ProjectConfiguration {
	result := configuration
	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Type != "" {
		result.Type = override.Type
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.SourceURL != "" {
		result.SourceURL = override.SourceURL
	}
	return result
}

func (configuration TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := configuration
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// IgnoreFileEnabled reports whether IgnoreFileName should be read; it defaults to true.
func (configuration SnapshotConfiguration) IgnoreFileEnabled() bool {
	return configuration.UseIgnoreFile == nil || *configuration.UseIgnoreFile
}

// CopyEnabled reports whether the artifact should be copied to the clipboard.
func (configuration SnapshotConfiguration) CopyEnabled() bool {
	return configuration.Copy != nil && *configuration.Copy
}

// TokensEnabled reports whether the artifact's tokens should be counted.
func (configuration SnapshotConfiguration) TokensEnabled() bool {
	return configuration.Tokens.Enabled != nil && *configuration.Tokens.Enabled
}

// Rules resolves the tree rules: configured ignore patterns replace the defaults,
// then exclusions and ignore-file patterns are appended.
func (configuration SnapshotConfiguration) Rules(defaults filter.Rules, ignoreFilePatterns []string) filter.Rules {
	rules := defaults
	patterns := defaults.Patterns
	if len(configuration.Ignore) > 0 {
		patterns = configuration.Ignore
	}
	combined := append(append([]string{}, patterns...), configuration.Exclude...)
	rules.Patterns = DeduplicatePatterns(append(combined, ignoreFilePatterns...))
	return rules
}

// Rules resolves the documentation rules on top of defaults.
func (configuration DocumentationConfiguration) Rules(defaults filter.Rules, ignoreFilePatterns []string) filter.Rules {
	rules := configuration.SnapshotConfiguration.Rules(defaults, ignoreFilePatterns)
	if len(configuration.Directories) > 0 {
		rules.DirectoryNames = configuration.Directories
	}
	if len(configuration.Files) > 0 {
		rules.FileNames = configuration.Files
	}
	if len(configuration.Extensions) > 0 {
		rules.Extensions = normalizeExtensions(configuration.Extensions)
	}
	return rules
}

// Template resolves the documentation framing on top of defaults.
func (configuration DocumentationConfiguration) Template(defaults output.DocumentationTemplate) output.DocumentationTemplate {
	template := defaults
	if configuration.Project.Name != "" {
		template.ProjectName = configuration.Project.Name
	}
	if configuration.Project.Type != "" {
		template.ProjectType = configuration.Project.Type
	}
	if configuration.Project.Model != "" {
		template.Model = configuration.Project.Model
	}
	if configuration.Project.SourceURL != "" {
		template.SourceURL = configuration.Project.SourceURL
	}
	if len(configuration.SetupSteps) > 0 {
		template.SetupSteps = configuration.SetupSteps
	}
	if configuration.ResumePrompt != "" {
		template.ResumePrompt = configuration.ResumePrompt
	}
	return template
}

// normalizeExtensions adds the leading dot users tend to leave out ("go" becomes ".go").
func normalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		if extension == "" {
			continue
		}
		if extension[0] != '.' {
			extension = "." + extension
		}
		normalized = append(normalized, extension)
	}
	return DeduplicatePatterns(normalized)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
