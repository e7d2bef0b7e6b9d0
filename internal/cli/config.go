package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing cadence configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Values are read as TOML, so numbers and
booleans need no quotes; anything else is taken as a string.

Common keys:
  api.base_url            Music API address
  api.offline             Use the in-memory catalog (true/false)
  favorites.timeout       Like request timeout in milliseconds
  history.max             Number of tracks kept in history
  defaults.volume         Starting volume (0-100)
  defaults.shuffle        Starting shuffle state (true/false)
  defaults.repeat         Starting repeat mode (none/one/all)
  storage.backend         sqlite, file or memory

Examples:
  cadence config set api.base_url https://music.example.com
  cadence config set defaults.volume 40`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), cfg)
	}

	encoder := toml.NewEncoder(cmd.OutOrStdout())
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if JSONOutput() {
		_, err := os.Stat(path)
		return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "exists": err == nil})
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'cadence config init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := config.Default().Save(configPath); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file: %s\n", configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Set api.base_url to your music server, or api.offline = true")
	fmt.Fprintln(out, "  2. Run 'cadence auth login' to store an API token")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.Path()
}

// runConfigSet updates the file on disk, not the merged config, so
// environment overrides are not written back.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	fileCfg, err := config.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("%w. Run 'cadence config init' first", err)
	}
	if err := fileCfg.Set(key, value); err != nil {
		return err
	}
	if err := fileCfg.Save(configPath); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}
