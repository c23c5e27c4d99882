package main

import (
	"bufio"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"barobaro/internal/domain"
	"barobaro/internal/storage/config"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"profiles"},
	Short:   "Manage mod lists",
	Long: `Manage mod lists (profiles): a base content package plus the mods to
enable, in load order.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all mod lists",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a mod list in load order",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name> [id|url]...",
	Short: "Create a mod list",
	Long: `Create a mod list with the given mods in load order.

Examples:
  barobaro profile create Survival
  barobaro profile create Survival 2559634234 1234567890 --base Vanilla`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProfileCreate,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name> <id|url>...",
	Short: "Append mods to a mod list",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProfileAdd,
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name> <id|url>...",
	Short: "Remove mods from a mod list",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProfileRemove,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a mod list",
	Long: `Delete a mod list. Installed mods are not touched.

Examples:
  barobaro profile delete Survival --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileDelete,
}

var profileExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a mod list",
	Long: `Export a mod list to a portable YAML file, or to stdout without --output.

Examples:
  barobaro profile export Survival > survival.yaml
  barobaro profile export Survival -o survival.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileExport,
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a mod list",
	Long: `Import a mod list from a YAML file. A mod list with the same name is
replaced.

Examples:
  barobaro profile import survival.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileImport,
}

var (
	profileBase   string
	profileYes    bool
	profileOutput string
)

func init() {
	profileCreateCmd.Flags().StringVar(&profileBase, "base", domain.DefaultBasePackage, "base content package")
	profileDeleteCmd.Flags().BoolVarP(&profileYes, "yes", "y", false, "skip confirmation prompt")
	profileExportCmd.Flags().StringVarP(&profileOutput, "output", "o", "", "write to file instead of stdout")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(profileExportCmd)
	profileCmd.AddCommand(profileImportCmd)

	rootCmd.AddCommand(profileCmd)
}

// withProfiles opens a session and loads the mod lists
func withProfiles(cmd *cobra.Command, fn func(s *session) error) error {
	return withSession(cmd, func(s *session) error {
		if err := s.app.Profiles.Refresh(cmd.Context()); err != nil {
			return err
		}
		return fn(s)
	})
}

func lookupProfile(s *session, name string) (domain.ModList, error) {
	list, ok := s.app.GetProfileByName(name)
	if !ok {
		return domain.ModList{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return list, nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	return withProfiles(cmd, func(s *session) error {
		lists := s.app.Profiles.List()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), lists)
		}
		if len(lists) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No mod lists found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tBASE\tMODS")
		fmt.Fprintln(w, "----\t----\t----")
		for _, l := range lists {
			fmt.Fprintf(w, "%s\t%s\t%d\n", l.ProfileName, orDash(l.BasePackage), len(l.Mods))
		}
		return w.Flush()
	})
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if err := loadMods(cmd, s, true); err != nil {
			return err
		}
		list, err := lookupProfile(s, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), list)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (base: %s)\n\n", list.ProfileName, orDash(list.BasePackage))
		if len(list.Mods) == 0 {
			fmt.Fprintln(out, "No mods.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tNAME\tINSTALLED")
		fmt.Fprintln(w, "-\t--\t----\t---------")
		for i, ref := range list.Mods {
			name, installed := "-", colorRed("no")
			if id, err := domain.ParseWorkshopID(ref); err == nil {
				if m, ok := s.app.GetModByID(id); ok {
					name, installed = orDash(m.Name), colorGreen("yes")
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, ref, truncate(name, 40), installed)
		}
		return w.Flush()
	})
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	ids, err := parseRefs(args[1:])
	if err != nil {
		return err
	}
	return withProfiles(cmd, func(s *session) error {
		name := args[0]
		if s.app.Profiles.Has(name) {
			return fmt.Errorf("mod list %q already exists", name)
		}
		if err := s.app.Profiles.Create(cmd.Context(), name, profileBase, idStrings(ids)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Created mod list: %s\n", colorGreen("✓"), name)
		return nil
	})
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	ids, err := parseRefs(args[1:])
	if err != nil {
		return err
	}
	return withProfiles(cmd, func(s *session) error {
		list, err := lookupProfile(s, args[0])
		if err != nil {
			return err
		}
		added := 0
		for _, ref := range idStrings(ids) {
			if !list.Contains(ref) {
				list.Mods = append(list.Mods, ref)
				added++
			}
		}
		if added == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to add.")
			return nil
		}
		if err := s.app.Profiles.Update(cmd.Context(), list); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Added %d mod(s) to %s\n", colorGreen("✓"), added, list.ProfileName)
		return nil
	})
}

func runProfileRemove(cmd *cobra.Command, args []string) error {
	ids, err := parseRefs(args[1:])
	if err != nil {
		return err
	}
	return withProfiles(cmd, func(s *session) error {
		list, err := lookupProfile(s, args[0])
		if err != nil {
			return err
		}
		drop := idStrings(ids)
		before := len(list.Mods)
		list.Mods = slices.DeleteFunc(list.Mods, func(ref string) bool {
			return slices.Contains(drop, ref)
		})
		removed := before - len(list.Mods)
		if removed == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove.")
			return nil
		}
		if err := s.app.Profiles.Update(cmd.Context(), list); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %d mod(s) from %s\n", colorGreen("✓"), removed, list.ProfileName)
		return nil
	})
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	return withProfiles(cmd, func(s *session) error {
		list, err := lookupProfile(s, args[0])
		if err != nil {
			return err
		}

		if !profileYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete mod list %s with %d mod(s)? [y/N] ", list.ProfileName, len(list.Mods))
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return ErrCancelled
			}
		}

		if err := s.app.Profiles.Delete(cmd.Context(), list.ProfileName); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted mod list: %s\n", colorGreen("✓"), list.ProfileName)
		return nil
	})
}

func runProfileExport(cmd *cobra.Command, args []string) error {
	return withProfiles(cmd, func(s *session) error {
		if profileOutput != "" {
			if err := s.app.ExportProfile(args[0], profileOutput); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Exported %s to %s\n", colorGreen("✓"), args[0], profileOutput)
			return nil
		}

		list, err := lookupProfile(s, args[0])
		if err != nil {
			return err
		}
		data, err := config.ExportProfile(list)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	})
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	return withProfiles(cmd, func(s *session) error {
		list, err := s.app.ImportProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Imported mod list: %s (%d mods)\n", colorGreen("✓"), list.ProfileName, len(list.Mods))
		return nil
	})
}

func idStrings(ids []domain.WorkshopID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
