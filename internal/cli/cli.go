// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/snapshot/internal/config"
	"github.com/temirov/snapshot/internal/services/clipboard"
	"github.com/temirov/snapshot/internal/snapshot"
	"github.com/temirov/snapshot/internal/tokenizer"
	"github.com/temirov/snapshot/internal/types"
	"github.com/temirov/snapshot/internal/utils"
)

const (
	rootUse              = "snapshot"
	rootShortDescription = "capture a project as a single text artifact"
	rootLongDescription  = `snapshot walks a project directory and writes one file describing it.
The tree command writes the directory structure followed by every file's contents.
The docs command writes a markdown document of source files framed by project notes.
Ignore patterns are plain substrings of the path relative to the root: "out" also skips "outlet".`

	treeUse              = types.CommandTree + " [root]"
	treeAlias            = "t"
	treeShortDescription = "write structure and contents (" + treeAlias + ")"
	treeLongDescription  = `Write the directory structure of root followed by the contents of every file.
Use -e to add ignore patterns and --ignore to replace the defaults.`
	treeUsageExample = `  # Snapshot the current directory
  snapshot tree

  # Snapshot ./service into a named file, skipping fixtures
  snapshot tree ./service -o service.txt -e fixtures`

	docsUse              = types.CommandDocumentation + " [root]"
	docsAlias            = "d"
	docsShortDescription = "write markdown documentation (" + docsAlias + ")"
	docsLongDescription  = `Write a markdown document with a fenced block per allow-listed source file.
Project details, setup steps and the resume prompt come from configuration or flags.`
	docsUsageExample = `  # Document a TypeScript project
  snapshot docs --project-name Storefront --project-type "Next.js app"

  # Document Go sources only
  snapshot docs --extension .go --extension .mod`

	initUse              = types.CommandInit
	initShortDescription = "write a default " + utils.ConfigFileName
	initLongDescription  = `Write a default configuration file into the working directory,
or into the global configuration directory with --global.`

	outputFlagName           = "output"
	outputFlagShorthand      = "o"
	outputFlagDescription    = "output file path"
	exclusionFlagName        = "exclude"
	exclusionFlagShorthand   = "e"
	exclusionFlagDescription = "additional ignore substring (repeatable)"
	ignoreFlagName           = "ignore"
	ignoreFlagDescription    = "ignore substring replacing the default set (repeatable)"
	noIgnoreFileFlagName     = "no-ignore-file"
	noIgnoreFileDescription  = "do not read " + config.IgnoreFileName + " from the root"
	configFlagName           = "config"
	configFlagDescription    = "configuration file path"
	copyFlagName             = "copy"
	copyFlagDescription      = "copy the written snapshot to the clipboard"
	tokensFlagName           = "tokens"
	tokensFlagDescription    = "log the token count of the written snapshot"
	modelFlagName            = "model"
	modelFlagDescription     = "tokenizer model used for token counting"
	defaultTokenizerModel    = "gpt-4o"

	projectNameFlagName        = "project-name"
	projectNameFlagDescription = "project name used in the documentation title"
	projectTypeFlagName        = "project-type"
	projectTypeFlagDescription = "project type listed in the overview"
	modelNameFlagName          = "model-name"
	modelNameFlagDescription   = "model listed in the overview"
	sourceURLFlagName          = "source-url"
	sourceURLFlagDescription   = "source URL listed in the overview"
	extensionFlagName          = "extension"
	extensionFlagDescription   = "allowed file extension replacing the default allow-list (repeatable)"

	globalFlagName        = "global"
	globalFlagDescription = "write the configuration into the global configuration directory"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"

	defaultRootPath              = "."
	treeOutputFileNameFormat     = "project_structure_%s.txt"
	documentationOutputFileName  = "project_documentation.md"
	snapshotWrittenMessage       = "Snapshot written"
	tokenCountMessage            = "Token count"
	tokenCountSkippedMessage     = "Token count skipped: snapshot is not valid UTF-8"
	clipboardCopiedMessage       = "Snapshot copied to clipboard"
	configurationWrittenMessage  = "Configuration written"
	errorLoadConfigurationFormat = "loading configuration: %w"
	errorLoadIgnoreFileFormat    = "reading %s: %w"
	errorTokenizerFormat         = "initializing tokenizer for %s: %w"
	errorCountTokensFormat       = "counting tokens: %w"
	errorCopyClipboardFormat     = "copying snapshot to clipboard: %w"
)

// Dependencies carries the collaborators commands use outside the file system.
type Dependencies struct {
	Logger     *zap.Logger
	Copier     clipboard.Copier
	Now        func() time.Time
	NewCounter func(tokenizer.Config) (tokenizer.Counter, string, error)
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.Now == nil {
		dependencies.Now = time.Now
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	return dependencies
}

// NewRootCommand builds the root Cobra command with the tree, docs and init subcommands.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var configurationPath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().StringVar(&configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(dependencies, &configurationPath),
		createDocumentationCommand(dependencies, &configurationPath),
		createInitCommand(dependencies),
	)
	return rootCommand
}

// snapshotOptions stores the flags shared by the tree and docs commands.
type snapshotOptions struct {
	outputPath        string
	exclusionPatterns []string
	ignorePatterns    []string
	disableIgnoreFile bool
	copyToClipboard   bool
	countTokens       bool
	tokenizerModel    string
}

// documentationOptions stores the docs-only flags.
type documentationOptions struct {
	projectName string
	projectType string
	modelName   string
	sourceURL   string
	extensions  []string
}

func addSnapshotFlags(command *cobra.Command, options *snapshotOptions) {
	flagSet := command.Flags()
	flagSet.StringVarP(&options.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flagSet.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	flagSet.StringArrayVar(&options.ignorePatterns, ignoreFlagName, nil, ignoreFlagDescription)
	registerSwitchFlag(flagSet, &options.disableIgnoreFile, noIgnoreFileFlagName, false, noIgnoreFileDescription)
	registerSwitchFlag(flagSet, &options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	registerSwitchFlag(flagSet, &options.countTokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&options.tokenizerModel, modelFlagName, defaultTokenizerModel, modelFlagDescription)
}

// overrides converts the flags the user actually set into a configuration layer.
func (options snapshotOptions) overrides(command *cobra.Command) config.SnapshotConfiguration {
	flagSet := command.Flags()
	var layer config.SnapshotConfiguration
	if flagSet.Changed(outputFlagName) {
		layer.Output = options.outputPath
	}
	if flagSet.Changed(exclusionFlagName) {
		layer.Exclude = options.exclusionPatterns
	}
	if flagSet.Changed(ignoreFlagName) {
		layer.Ignore = options.ignorePatterns
	}
	if flagSet.Changed(noIgnoreFileFlagName) {
		useIgnoreFile := !options.disableIgnoreFile
		layer.UseIgnoreFile = &useIgnoreFile
	}
	if flagSet.Changed(copyFlagName) {
		copyToClipboard := options.copyToClipboard
		layer.Copy = &copyToClipboard
	}
	if flagSet.Changed(tokensFlagName) {
		countTokens := options.countTokens
		layer.Tokens.Enabled = &countTokens
	}
	if flagSet.Changed(modelFlagName) {
		layer.Tokens.Model = options.tokenizerModel
	}
	return layer
}

func (options documentationOptions) overrides(command *cobra.Command) config.DocumentationConfiguration {
	flagSet := command.Flags()
	var layer config.DocumentationConfiguration
	if flagSet.Changed(projectNameFlagName) {
		layer.Project.Name = options.projectName
	}
	if flagSet.Changed(projectTypeFlagName) {
		layer.Project.Type = options.projectType
	}
	if flagSet.Changed(modelNameFlagName) {
		layer.Project.Model = options.modelName
	}
	if flagSet.Changed(sourceURLFlagName) {
		layer.Project.SourceURL = options.sourceURL
	}
	if flagSet.Changed(extensionFlagName) {
		layer.Extensions = options.extensions
	}
	return layer
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(dependencies Dependencies, configurationPath *string) *cobra.Command {
	var options snapshotOptions

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, loadError := loadConfiguration(*configurationPath)
			if loadError != nil {
				return loadError
			}
			root := resolveRoot(arguments)
			settings := applicationConfiguration.Tree.Merge(options.overrides(command))
			ignoreFilePatterns, ignoreError := loadIgnoreFilePatterns(root, settings)
			if ignoreError != nil {
				return ignoreError
			}
			policy := snapshot.TreePolicy(settings.Rules(config.DefaultTreeRules(), ignoreFilePatterns))
			return runSnapshot(dependencies, root, settings, policy)
		},
	}
	addSnapshotFlags(treeCommand, &options)
	return treeCommand
}

// createDocumentationCommand returns the docs subcommand.
func createDocumentationCommand(dependencies Dependencies, configurationPath *string) *cobra.Command {
	var options snapshotOptions
	var documentation documentationOptions

	documentationCommand := &cobra.Command{
		Use:     docsUse,
		Aliases: []string{docsAlias},
		Short:   docsShortDescription,
		Long:    docsLongDescription,
		Example: docsUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, loadError := loadConfiguration(*configurationPath)
			if loadError != nil {
				return loadError
			}
			root := resolveRoot(arguments)
			layer := documentation.overrides(command)
			layer.SnapshotConfiguration = options.overrides(command)
			settings := applicationConfiguration.Documentation.Merge(layer)
			if settings.Output == "" {
				settings.Output = documentationOutputFileName
			}
			ignoreFilePatterns, ignoreError := loadIgnoreFilePatterns(root, settings.SnapshotConfiguration)
			if ignoreError != nil {
				return ignoreError
			}
			policy := snapshot.DocumentationPolicy(
				settings.Rules(config.DefaultDocumentationRules(), ignoreFilePatterns),
				settings.Template(config.DefaultDocumentationTemplate()),
			)
			return runSnapshot(dependencies, root, settings.SnapshotConfiguration, policy)
		},
	}
	addSnapshotFlags(documentationCommand, &options)
	flagSet := documentationCommand.Flags()
	flagSet.StringVar(&documentation.projectName, projectNameFlagName, "", projectNameFlagDescription)
	flagSet.StringVar(&documentation.projectType, projectTypeFlagName, "", projectTypeFlagDescription)
	flagSet.StringVar(&documentation.modelName, modelNameFlagName, "", modelNameFlagDescription)
	flagSet.StringVar(&documentation.sourceURL, sourceURLFlagName, "", sourceURLFlagDescription)
	flagSet.StringArrayVar(&documentation.extensions, extensionFlagName, nil, extensionFlagDescription)
	return documentationCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var writeGlobal bool
	var overwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  overwrite,
			})
			if initError != nil {
				return initError
			}
			dependencies.Logger.Info(configurationWrittenMessage, zap.String("path", destinationPath))
			return nil
		},
	}
	registerSwitchFlag(initCommand.Flags(), &writeGlobal, globalFlagName, false, globalFlagDescription)
	registerSwitchFlag(initCommand.Flags(), &overwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func loadConfiguration(explicitPath string) (config.ApplicationConfiguration, error) {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: explicitPath})
	if loadError != nil {
		return config.ApplicationConfiguration{}, fmt.Errorf(errorLoadConfigurationFormat, loadError)
	}
	return applicationConfiguration, nil
}

func resolveRoot(arguments []string) string {
	if len(arguments) == 0 || arguments[0] == "" {
		return defaultRootPath
	}
	return arguments[0]
}

func loadIgnoreFilePatterns(root string, settings config.SnapshotConfiguration) ([]string, error) {
	if !settings.IgnoreFileEnabled() {
		return nil, nil
	}
	patterns, loadError := config.LoadRootIgnoreFile(root)
	if loadError != nil {
		return nil, fmt.Errorf(errorLoadIgnoreFileFormat, config.IgnoreFileName, loadError)
	}
	return patterns, nil
}

// runSnapshot generates the artifact and performs the requested follow-ups on it.
func runSnapshot(dependencies Dependencies, root string, settings config.SnapshotConfiguration, policy snapshot.Policy) error {
	generatedAt := dependencies.Now()
	outputPath := settings.Output
	if outputPath == "" {
		outputPath = fmt.Sprintf(treeOutputFileNameFormat, utils.FormatFileNameTimestamp(generatedAt))
	}

	var captured *bytes.Buffer
	request := snapshot.Request{
		Root:        root,
		OutputPath:  outputPath,
		Policy:      policy,
		GeneratedAt: generatedAt,
		Warn: func(message string) {
			dependencies.Logger.Warn(message)
		},
	}
	if settings.CopyEnabled() || settings.TokensEnabled() {
		captured = &bytes.Buffer{}
		request.Capture = captured
	}

	result, generateError := snapshot.Generate(request)
	if generateError != nil {
		return generateError
	}
	dependencies.Logger.Info(snapshotWrittenMessage,
		zap.String("command", policy.Name),
		zap.String("path", result.OutputPath),
		zap.String("size", utils.FormatFileSize(result.BytesWritten)),
	)

	if settings.TokensEnabled() {
		if countError := logTokenCount(dependencies, settings.Tokens.Model, captured.Bytes()); countError != nil {
			return countError
		}
	}
	if settings.CopyEnabled() {
		if copyError := dependencies.Copier.Copy(captured.String()); copyError != nil {
			return fmt.Errorf(errorCopyClipboardFormat, copyError)
		}
		dependencies.Logger.Info(clipboardCopiedMessage)
	}
	return nil
}

func logTokenCount(dependencies Dependencies, model string, data []byte) error {
	if model == "" {
		model = defaultTokenizerModel
	}
	counter, encodingName, counterError := dependencies.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		return fmt.Errorf(errorTokenizerFormat, model, counterError)
	}
	countResult, countError := tokenizer.CountBytes(counter, data)
	if countError != nil {
		return fmt.Errorf(errorCountTokensFormat, countError)
	}
	if !countResult.Counted {
		dependencies.Logger.Warn(tokenCountSkippedMessage)
		return nil
	}
	dependencies.Logger.Info(tokenCountMessage,
		zap.Int("tokens", countResult.Tokens),
		zap.String("model", encodingName),
	)
	return nil
}

