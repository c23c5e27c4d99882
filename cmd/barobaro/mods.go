package main

import (
	"fmt"
	"text/tabwriter"

	"barobaro/internal/core"
	"barobaro/internal/domain"

	"github.com/spf13/cobra"
)

var modsCmd = &cobra.Command{
	Use:     "mods",
	Aliases: []string{"mod"},
	Short:   "List, download and inspect mods",
}

var modsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods",
	Long: `List installed mods with their Workshop metadata.

Examples:
  barobaro mods list
  barobaro mods list --profile Survival
  barobaro mods list --no-metadata`,
	Args: cobra.NoArgs,
	RunE: runModsList,
}

var modsEnabledCmd = &cobra.Command{
	Use:   "enabled",
	Short: "List enabled mods in load order",
	Args:  cobra.NoArgs,
	RunE:  runModsEnabled,
}

var modsDownloadCmd = &cobra.Command{
	Use:   "download <id|url>...",
	Short: "Download Workshop items",
	Long: `Ask the backend to download Workshop items through SteamCMD.

Examples:
  barobaro mods download 2559634234
  barobaro mods download "https://steamcommunity.com/sharedfiles/filedetails/?id=2559634234"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runModsDownload,
}

var modsInstallCmd = &cobra.Command{
	Use:   "install <id|url>...",
	Short: "Install downloaded Workshop items into the game",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runModsInstall,
}

var modsMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Refresh Workshop metadata for every known mod",
	Args:  cobra.NoArgs,
	RunE:  runModsMetadata,
}

var modsInfoCmd = &cobra.Command{
	Use:   "info <id|url>",
	Short: "Show an installed mod",
	Args:  cobra.ExactArgs(1),
	RunE:  runModsInfo,
}

var modsWorkshopCmd = &cobra.Command{
	Use:   "workshop <id|url>...",
	Short: "Look up Workshop items",
	Long: `Look up Workshop items and check that they are Barotrauma content.

Examples:
  barobaro mods workshop 2559634234 1234567890`,
	Args: cobra.MinimumNArgs(1),
	RunE: runModsWorkshop,
}

var modsSubscribedCmd = &cobra.Command{
	Use:   "subscribed",
	Short: "List Workshop items Steam downloaded that are not installed",
	Args:  cobra.NoArgs,
	RunE:  runModsSubscribed,
}

var (
	modsProfile    string
	modsNoMetadata bool
	modsVerify     bool
)

func init() {
	modsListCmd.Flags().StringVarP(&modsProfile, "profile", "p", "", "mark mods enabled in this mod list")
	modsListCmd.Flags().BoolVar(&modsNoMetadata, "no-metadata", false, "skip the Workshop metadata lookup")
	modsInfoCmd.Flags().BoolVar(&modsVerify, "verify", false, "also fetch the on-disk size and content hash")
	modsSubscribedCmd.Flags().StringSliceVar(&steamRoots, "steam-root", nil, "Steam root to search (repeatable; default: standard locations)")

	modsCmd.AddCommand(modsListCmd)
	modsCmd.AddCommand(modsEnabledCmd)
	modsCmd.AddCommand(modsDownloadCmd)
	modsCmd.AddCommand(modsInstallCmd)
	modsCmd.AddCommand(modsMetadataCmd)
	modsCmd.AddCommand(modsInfoCmd)
	modsCmd.AddCommand(modsWorkshopCmd)
	modsCmd.AddCommand(modsSubscribedCmd)

	rootCmd.AddCommand(modsCmd)
}

// loadMods refreshes every collection and, unless skipped, merges Workshop
// metadata into the mods
func loadMods(cmd *cobra.Command, s *session, metadata bool) error {
	if err := s.app.RefreshAll(cmd.Context()); err != nil {
		return err
	}
	if !metadata {
		return nil
	}
	if _, err := s.app.RetrieveMetadata(cmd.Context()); err != nil {
		// listings are still useful without metadata
		s.log.Warn().Err(err).Msg("metadata unavailable")
	}
	return nil
}

func runModsList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if err := loadMods(cmd, s, !modsNoMetadata); err != nil {
			return err
		}

		var profile *domain.ModList
		if modsProfile != "" {
			list, ok := s.app.GetProfileByName(modsProfile)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, modsProfile)
			}
			profile = &list
		}

		mods := s.app.Installed.Mods()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), mods)
		}
		if len(mods) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No mods installed.")
			return nil
		}
		printMods(cmd, s, mods, profile)
		return nil
	})
}

func runModsEnabled(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if err := loadMods(cmd, s, true); err != nil {
			return err
		}

		mods := s.app.Enabled.Mods()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), mods)
		}
		if len(mods) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No mods enabled.")
			return nil
		}
		printMods(cmd, s, mods, nil)
		return nil
	})
}

// printMods prints a mod table. With a profile, a column marks its members.
func printMods(cmd *cobra.Command, s *session, mods []domain.Mod, profile *domain.ModList) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if profile != nil {
		fmt.Fprintln(w, "ID\tNAME\tCREATOR\tSIZE\tUPDATED\tIN PROFILE")
		fmt.Fprintln(w, "--\t----\t-------\t----\t-------\t----------")
	} else {
		fmt.Fprintln(w, "ID\tNAME\tCREATOR\tSIZE\tUPDATED")
		fmt.Fprintln(w, "--\t----\t-------\t----\t-------")
	}

	for _, m := range mods {
		size, updated := "-", "-"
		if m.Size > 0 {
			size = s.printer.Sprintf("%d", m.Size)
		}
		if m.LastModified > 0 {
			updated = domain.FormatDate(m.LastModified)
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", m.SteamWorkshopID, truncate(orDash(m.Name), 40), orDash(m.Creator), size, updated)
		if profile != nil {
			mark := ""
			if core.IsModEnabled(m.SteamWorkshopID, profile) {
				mark = colorGreen("✓")
			}
			row += "\t" + mark
		}
		fmt.Fprintln(w, row)
	}
	w.Flush()
}

func runModsDownload(cmd *cobra.Command, args []string) error {
	ids, err := parseRefs(args)
	if err != nil {
		return err
	}
	return withSession(cmd, func(s *session) error {
		if err := s.app.DownloadMods(cmd.Context(), ids); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Downloaded %d mod(s)\n", colorGreen("✓"), len(ids))
		return nil
	})
}

func runModsInstall(cmd *cobra.Command, args []string) error {
	ids, err := parseRefs(args)
	if err != nil {
		return err
	}
	return withSession(cmd, func(s *session) error {
		outcomes, err := s.app.InstallMods(cmd.Context(), ids)
		if err != nil && outcomes == nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), outcomes)
		}

		failed := 0
		out := cmd.OutOrStdout()
		for _, o := range outcomes {
			if o.Success {
				fmt.Fprintf(out, "%s %s\n", colorGreen("✓"), o.ModID)
				continue
			}
			failed++
			fmt.Fprintf(out, "%s %s: %s\n", colorRed("✗"), o.ModID, orDash(o.Message))
		}
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d mod(s) failed to install", failed, len(outcomes))
		}
		return nil
	})
}

func runModsMetadata(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if err := s.app.RefreshAll(cmd.Context()); err != nil {
			return err
		}
		res, err := s.app.RetrieveMetadata(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %d installed and %d enabled mod(s)\n", colorGreen("✓"), res.Installed, res.Enabled)
		if res.Dropped > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), colorYellow(fmt.Sprintf("%d record(s) matched no known mod", res.Dropped)))
		}
		return nil
	})
}

func runModsInfo(cmd *cobra.Command, args []string) error {
	id, err := domain.ParseWorkshopRef(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(s *session) error {
		if err := loadMods(cmd, s, true); err != nil {
			return err
		}
		m, ok := s.app.GetModByID(id)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrModNotFound, id)
		}

		var (
			occupied uint64
			hash     string
		)
		if modsVerify {
			if occupied, err = s.app.ModOccupation(cmd.Context(), id); err != nil {
				return err
			}
			if hash, err = s.app.ModHash(cmd.Context(), id); err != nil {
				return err
			}
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), struct {
				domain.Mod
				DiskSize uint64 `json:"diskSize,omitempty"`
				Hash     string `json:"hash,omitempty"`
			}{m, occupied, hash})
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", orDash(m.Name))
		fmt.Fprintf(w, "Workshop ID:\t%s\n", m.SteamWorkshopID)
		fmt.Fprintf(w, "Workshop page:\t%s\n", domain.WorkshopURL(m.SteamWorkshopID))
		if m.ModVersion != "" {
			fmt.Fprintf(w, "Version:\t%s\n", m.ModVersion)
		}
		if !m.HasMetadata() {
			fmt.Fprintf(w, "Metadata:\t%s\n", colorYellow("none"))
		} else {
			fmt.Fprintf(w, "Creator:\t%s\n", orDash(m.Creator))
			fmt.Fprintf(w, "Size:\t%s\n", s.printer.Sprintf("%d bytes", m.Size))
			if m.LastModified > 0 {
				fmt.Fprintf(w, "Updated:\t%s\n", domain.FormatDate(m.LastModified))
			}
			fmt.Fprintf(w, "Subscribers:\t%s\n", s.printer.Sprintf("%d", m.Subscribers))
		}
		if modsVerify {
			fmt.Fprintf(w, "On disk:\t%s\n", s.printer.Sprintf("%d bytes", occupied))
			fmt.Fprintf(w, "Hash:\t%s\n", hash)
			if m.ExpectedHash != "" && m.ExpectedHash != hash {
				fmt.Fprintf(w, "Expected hash:\t%s\n", colorRed(m.ExpectedHash))
			}
		}
		return w.Flush()
	})
}

func runModsWorkshop(cmd *cobra.Command, args []string) error {
	ids, err := parseRefs(args)
	if err != nil {
		return err
	}
	return withSession(cmd, func(s *session) error {
		items, err := s.app.WorkshopItems(cmd.Context(), ids)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), items)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCREATOR\tSIZE\tBAROTRAUMA")
		fmt.Fprintln(w, "--\t-----\t-------\t----\t----------")
		for _, it := range items {
			ok, err := s.app.IsBarotraumaMod(cmd.Context(), it.PublishedFileID)
			mark := colorGreen("yes")
			switch {
			case err != nil:
				mark = colorYellow("unknown")
			case !ok:
				mark = colorRed("no")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.PublishedFileID, truncate(orDash(it.Title), 40), orDash(it.Creator), s.printer.Sprintf("%d", it.FileSize), mark)
		}
		return w.Flush()
	})
}

func runModsSubscribed(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if err := s.app.Installed.Refresh(cmd.Context()); err != nil {
			return err
		}
		items, err := s.app.SubscribedItems(steamRoots...)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Every downloaded Workshop item is installed.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSIZE\tUPDATED")
		fmt.Fprintln(w, "--\t----\t-------")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", it.ID, s.printer.Sprintf("%d", it.Size), domain.FormatDate(it.TimeUpdated))
		}
		return w.Flush()
	})
}
