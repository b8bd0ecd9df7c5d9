package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"keepgen.dev/pkg/keepgen/internal/domain"
	m "keepgen.dev/pkg/keepgen/internal/model"
)

const generateLongDescription = `Render one template into its destination file.

The template is looked up in the template search paths. Unless --no-protect
is given, the existing destination is scanned first and its protected
sections are carried over into the new output.

Context values come from --context (JSON, YAML or TOML) and --set key=value
pairs; --set wins. Values are parsed as YAML scalars or lists, so
--set count=3 is a number and --set tags=[a,b] a list. Dotted keys create
nested maps.`

var (
	generateDestFlag      string
	generateFilenameFlag  string
	generateSetFlag       []string
	generateContextFlag   string
	generateNoProtectFlag bool
	generateDryRunFlag    bool
	generateDiffFlag      bool
)

// generateCmd represents the generate command.
var generateCmd = newGenerateCmd()

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <template>",
		Short: "Render a single template",
		Long:  generateLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseSetValues(generateSetFlag)
			if err != nil {
				return err
			}

			return workflow.Generate(cmd.Context(), domain.GenerateArgs{
				Template:    args[0],
				DestPath:    generateDestFlag,
				Filename:    generateFilenameFlag,
				ContextFile: m.Path(generateContextFlag),
				Values:      values,
				Protected:   protectedSections(cmd, generateNoProtectFlag),
				DryRun:      flagOrConfigBool(cmd, dryRunFlagName, dryRunConfigKey),
				Diff:        flagOrConfigBool(cmd, diffFlagName, diffConfigKey),
			})
		},
	}

	configureGenerateFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func configureGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&generateDestFlag, "dest", "d", "", "destination directory, relative to the template directory")
	cmd.Flags().StringVarP(&generateFilenameFlag, "filename", "f", "", "destination file name (default: template name without its last extension)")
	cmd.Flags().StringArrayVarP(&generateSetFlag, "set", "s", nil, "context value as key=value (can be repeated)")
	cmd.Flags().StringVarP(&generateContextFlag, "context", "c", "", "file with context values (json, yaml or toml)")
	configureOutputFlags(cmd, &generateNoProtectFlag, &generateDryRunFlag, &generateDiffFlag)
}

// configureOutputFlags registers the flags shared by generate, run and watch.
func configureOutputFlags(cmd *cobra.Command, noProtect, dryRun, diff *bool) {
	cmd.Flags().BoolVar(noProtect, noProtectFlagName, false, "do not carry protected sections over from existing files")
	cmd.Flags().BoolVar(dryRun, dryRunFlagName, false, "render and show a diff without writing")
	cmd.Flags().BoolVar(diff, diffFlagName, false, "show a diff for every changed file")
}

// protectedSections resolves run.protected against --no-protect.
func protectedSections(cmd *cobra.Command, noProtect bool) bool {
	if flag := cmd.Flags().Lookup(noProtectFlagName); flag != nil && flag.Changed {
		return !noProtect
	}

	return viper.GetBool(runProtectedKey)
}

// parseSetValues turns key=value pairs into a context map.
func parseSetValues(pairs []string) (map[string]any, error) {
	values := map[string]any{}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q: expected key=value", pair)
		}

		if err := setNested(values, strings.Split(key, "."), parseScalar(raw)); err != nil {
			return nil, fmt.Errorf("invalid --set value %q: %w", pair, err)
		}
	}

	return values, nil
}

func parseScalar(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}

	if _, isMap := value.(map[string]any); isMap {
		return raw
	}

	return value
}

func setNested(values map[string]any, path []string, value any) error {
	for i, part := range path {
		if part == "" {
			return fmt.Errorf("empty key segment")
		}

		if i == len(path)-1 {
			values[part] = value
			return nil
		}

		next, exists := values[part]
		if !exists {
			child := map[string]any{}
			values[part] = child
			values = child

			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%q is already set to a non-map value", strings.Join(path[:i+1], "."))
		}

		values = child
	}

	return nil
}
