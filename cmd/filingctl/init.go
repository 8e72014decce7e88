package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/filingctl/internal/config"
	"github.com/nao1215/filingctl/internal/service"
)

//go:embed templates/filingctl.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// xdgConfigFileName is the file name used inside the XDG config directory.
const xdgConfigFileName = "config.yaml"

var (
	baseURLLine         = regexp.MustCompile(`(?m)^baseURL: .*$`)
	defaultTemplateLine = regexp.MustCompile(`(?m)^defaultTemplate: .*$`)
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter filingctl configuration file",
		Long: `Init writes a commented .filingctl file with the service address,
timeout, watch refresh period and the template list.

--base-url and --template are written into the file instead of the
defaults. The result is checked the same way a loaded file is, so a bad
address or an unknown template is reported before anything is written.

Examples:
  filingctl init
  filingctl init --base-url https://classifier.internal:8443 --template cot.tpl
  filingctl init --xdg           # $XDG_CONFIG_HOME/filingctl/config.yaml
  filingctl init -o team.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName, "Output file path")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	cmd.Flags().Bool("xdg", false, "Write to the XDG config directory")
	cmd.Flags().StringP("template", "t", "", "Default template written to the file")
	cmd.MarkFlagsMutuallyExclusive("output", "xdg")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := initOutputPath(cmd)
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := renderConfig(cmd)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// Headers may hold API keys.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	return nil
}

func initOutputPath(cmd *cobra.Command) (string, error) {
	useXDG, err := cmd.Flags().GetBool("xdg")
	if err != nil {
		return "", err
	}
	if useXDG {
		return filepath.Join(config.XDGConfigDir(), xdgConfigFileName), nil
	}
	return cmd.Flags().GetString("output")
}

// renderConfig fills the embedded template with the requested base URL and
// default template, then checks that the result loads into a valid Config.
func renderConfig(cmd *cobra.Command) ([]byte, error) {
	content, err := configTemplate.ReadFile("templates/filingctl.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config template: %w", err)
	}

	if f := cmd.Flags().Lookup("base-url"); f != nil && f.Changed {
		content = baseURLLine.ReplaceAll(content, fmt.Appendf(nil, "baseURL: %s", f.Value.String()))
	}
	if tpl, _ := cmd.Flags().GetString("template"); tpl != "" {
		content = defaultTemplateLine.ReplaceAll(content, fmt.Appendf(nil, "defaultTemplate: %s", tpl))
	}

	var file config.File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("generated configuration does not parse: %w", err)
	}
	cfg := config.NewConfig()
	file.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generated configuration is invalid: %w", err)
	}
	if _, err := service.New(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("generated configuration is invalid: %w", err)
	}
	return content, nil
}
