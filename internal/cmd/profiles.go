package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/internal/config"
	"github.com/zvakanaka/orcaslicer-web/internal/observability"
	"github.com/zvakanaka/orcaslicer-web/pkg/baseindex"
	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/profilestore"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage stored slicer profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list <category>",
	Short: "List stored profiles in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesList,
}

var profilesImportName string

var profilesImportCmd = &cobra.Command{
	Use:   "import <category> <file>",
	Short: "Validate and import a profile document",
	Long: `Validate and import a profile document.

The document is resolved against the bundled base profiles exactly as an
HTTP upload would be; resolution errors reject the import. The raw document
is stored.`,
	Args: cobra.ExactArgs(2),
	RunE: runProfilesImport,
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <category> <name>",
	Short: "Delete a stored profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfilesDelete,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesImportCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)

	profilesImportCmd.Flags().StringVar(&profilesImportName, "name", "", "Profile name (defaults to the file name)")
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	category, err := profile.ParseCategory(args[0])
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid category", err)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}

	store := profilestore.NewStore(cfg.Profiles.Dir)
	infos, err := store.List(category)
	if err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot list profiles", err)
	}

	if len(infos) == 0 {
		fmt.Printf("No %s profiles.\n", category)
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s\t%d bytes\t%s\n", info.Name, info.Size, info.Modified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runProfilesImport(cmd *cobra.Command, args []string) error {
	category, err := profile.ParseCategory(args[0])
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid category", err)
	}
	path := args[1]

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot read profile file", err)
	}

	name := profilesImportName
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name = profilestore.SanitizeName(name)
	if name == "" {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid profile name", fmt.Errorf("could not derive a valid name from %q", path))
	}

	index, err := baseindex.Load(cfg.Slicer.BundledProfilesDir, observability.CLILogger)
	if err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot index bundled profiles", err)
	}

	store := profilestore.NewStore(cfg.Profiles.Dir)
	ingestor := profile.NewIngestor(profile.NewResolver(index), store)

	resolved, err := ingestor.Ingest(category, name, raw)
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Profile rejected", err)
	}

	observability.CLILogger.Info("Profile imported",
		zap.String("category", string(category)),
		zap.String("name", name),
		zap.Int("resolved_keys", resolved.Len()))
	fmt.Printf("Imported %s/%s (%d resolved keys)\n", category, name, resolved.Len())
	return nil
}

func runProfilesDelete(cmd *cobra.Command, args []string) error {
	category, err := profile.ParseCategory(args[0])
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid category", err)
	}
	name := args[1]

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}

	store := profilestore.NewStore(cfg.Profiles.Dir)
	if err := store.Delete(category, name); err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot delete profile", err)
	}
	fmt.Printf("Deleted %s/%s\n", category, name)
	return nil
}
