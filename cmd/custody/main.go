package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"custody-go/internal/app"
	"custody-go/internal/config"
	"custody-go/internal/model"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Import", "Verify").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "custody",
	Short: "Preserve AI chat transcripts with a verifiable chain of custody",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:        %s\n", cfg.BaseDir)
		fmt.Printf("Transcripts Dir: %s\n", cfg.TranscriptsDir)
		if cfg.MirrorDir != "" {
			fmt.Printf("Mirror Dir:      %s\n", cfg.MirrorDir)
		}
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Search enabled:  %t\n", cfg.Search.Enabled)
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Preserve a transcript (paste to stdin or use --file)",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		platform, _ := cmd.Flags().GetString("platform")
		sourceURL, _ := cmd.Flags().GetString("url")
		format, _ := cmd.Flags().GetString("format")
		file, _ := cmd.Flags().GetString("file")

		var content []byte
		var err error
		if file != "" {
			content, err = os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
		} else {
			if term.IsTerminal(int(syscall.Stdin)) {
				fmt.Fprintln(os.Stderr, "Paste the transcript, then press Ctrl-D:")
			}
			content, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}
		if len(strings.TrimSpace(string(content))) == 0 {
			return fmt.Errorf("transcript content is empty")
		}

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := a.Import(title, string(content), platform, sourceURL, model.ExportFormat(format))
		if err != nil {
			return fmt.Errorf("importing transcript: %w", err)
		}

		fmt.Printf("Imported record %s\n", record.ID)
		fmt.Printf("  Title:   %s\n", record.Title)
		fmt.Printf("  SHA-256: %s\n", record.CurrentHash)
		fmt.Printf("  File:    %s\n", record.LocalPath)
		if record.MirrorPath != "" {
			fmt.Printf("  Mirror:  %s\n", record.MirrorPath)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List preserved transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.List()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No records.")
			return nil
		}

		for _, r := range records {
			hash := r.CurrentHash
			if len(hash) > 12 {
				hash = hash[:12]
			}
			fmt.Printf("%s  %s  %-12s  %s\n",
				r.ID,
				r.ImportedAt.Format("2006-01-02 15:04:05"),
				hash,
				r.Title,
			)
		}
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a record's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Get")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:              %s\n", r.ID)
		fmt.Printf("Title:           %s\n", r.Title)
		fmt.Printf("Source platform: %s\n", r.SourcePlatform)
		if r.SourceURL != "" {
			fmt.Printf("Source URL:      %s\n", r.SourceURL)
		}
		fmt.Printf("Imported:        %s\n", r.ImportedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("SHA-256:         %s\n", r.CurrentHash)
		fmt.Printf("Format:          %s\n", r.ExportFormat)
		fmt.Printf("File:            %s\n", r.LocalPath)
		if r.MirrorPath != "" {
			fmt.Printf("Mirror:          %s\n", r.MirrorPath)
		}
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export ID DIR",
	Short: "Export a transcript to a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Export(args[0], args[1], model.ExportFormat(format))
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}

		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify ID",
	Short: "Verify a transcript file against its recorded hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Verify")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Verify(args[0])
		if err != nil {
			return err
		}

		if result.IsValid {
			fmt.Println("VERIFIED: file content matches the recorded hash")
		} else {
			fmt.Println("MODIFIED: file content does NOT match the recorded hash")
			fmt.Printf("  recorded: %s\n", result.StoredHash)
			fmt.Printf("  computed: %s\n", result.ComputedHash)
			os.Exit(1)
		}
		return nil
	},
}

// publish command
var publishCmd = &cobra.Command{
	Use:   "publish ID SERVICE",
	Short: "Publish a record's hash to a notarization service",
	Long: `Publish a record's hash to a notarization service.

Services: github-gist, open-timestamps, custom-webhook`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Publish")
		if err != nil {
			return err
		}
		defer a.Close()

		pub, err := a.Publish(args[0], model.NotaryService(args[1]))
		if err != nil {
			return err
		}

		fmt.Printf("Published to %s (%s)\n", pub.Service, pub.Status)
		if pub.PublicURL != "" {
			fmt.Printf("  URL:  %s\n", pub.PublicURL)
		}
		if pub.TransactionID != "" {
			fmt.Printf("  TxID: %s\n", pub.TransactionID)
		}
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report ID",
	Short: "Print the chain-of-custody report for a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Report")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Report(args[0])
		if err != nil {
			return err
		}

		fmt.Print(report)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup ID",
	Short: "Copy a transcript to all enabled storage locations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Backup(args[0])
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Backed up to %d location(s)\n", count)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a record (transcript files stay on disk)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Delete(args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted record %s\n", args[0])
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log ID",
	Short: "View a record's custody history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Entries")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Entries(args[0])
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No custody entries.")
			return nil
		}

		for _, e := range entries {
			hash := e.Hash
			if len(hash) > 12 {
				hash = hash[:12]
			}
			fmt.Printf("%s  %-10s  %-10s  %-12s  %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Action,
				e.Status,
				hash,
				e.Details,
			)
		}
		return nil
	},
}

// search commands
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Full-text search over preserved transcripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		hits, err := a.Search(strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, h := range hits {
			fmt.Printf("%s  %.3f  %s\n", h.ID, h.Score, h.Title)
			for _, fragments := range h.Fragments {
				for _, f := range fragments {
					fmt.Printf("    %s\n", f)
				}
			}
		}
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from stored records",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Reindex")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Reindex()
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d record(s)\n", count)
		return nil
	},
}

// location commands
var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage backup storage locations",
}

var locationAddCmd = &cobra.Command{
	Use:   "add NAME TYPE PATH",
	Short: "Register a backup storage location",
	Long: `Register a backup storage location.

Types: local, icloud, dropbox, google-drive, external-drive, optical-disc, s3
For s3, PATH is bucket or bucket/prefix.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypted, _ := cmd.Flags().GetBool("encrypted")

		a, err := newApp("AddLocation")
		if err != nil {
			return err
		}
		defer a.Close()

		loc, err := a.AddLocation(args[0], model.LocationType(args[1]), args[2], encrypted)
		if err != nil {
			return err
		}

		fmt.Printf("Added location %s (%s)\n", loc.Name, loc.ID)
		return nil
	},
}

var locationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup storage locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListLocations")
		if err != nil {
			return err
		}
		defer a.Close()

		locs, err := a.ListLocations()
		if err != nil {
			return err
		}

		if len(locs) == 0 {
			fmt.Println("No storage locations configured.")
			return nil
		}

		for _, l := range locs {
			state := "enabled"
			if !l.Enabled {
				state = "disabled"
			}
			enc := ""
			if l.Encrypted {
				enc = "  [encrypted]"
			}
			lastSync := "never"
			if l.LastSyncAt != nil {
				lastSync = fmt.Sprintf("%s (%s)", l.LastSyncAt.Format("2006-01-02 15:04:05"), l.SyncStatus)
			}
			fmt.Printf("%-15s  %-14s  %-8s  synced: %s%s\n    %s\n",
				l.Name, l.Type, state, lastSync, enc, l.Path)
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair for encrypted backup copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("InitKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Print("Passphrase: ")
		passphrase, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}

		fmt.Print("Confirm passphrase: ")
		confirm, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}

		if string(passphrase) != string(confirm) {
			return fmt.Errorf("passphrases do not match")
		}
		if len(passphrase) == 0 {
			return fmt.Errorf("passphrase must not be empty")
		}

		if err := a.InitKeys(string(passphrase)); err != nil {
			return err
		}

		fmt.Println("Key pair generated.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// location subcommands
	locationCmd.AddCommand(locationAddCmd)
	locationCmd.AddCommand(locationListCmd)
	locationAddCmd.Flags().Bool("encrypted", false, "Encrypt backup copies sent to this location")

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// import flags
	importCmd.Flags().String("title", "", "Title for the preserved transcript")
	importCmd.Flags().String("platform", "", "Source platform, e.g. claude.ai")
	importCmd.Flags().String("url", "", "Source conversation URL")
	importCmd.Flags().String("format", "text", "Storage format: text, markdown, or pdf")
	importCmd.Flags().String("file", "", "Read the transcript from a file instead of stdin")
	importCmd.MarkFlagRequired("title")

	exportCmd.Flags().String("format", "text", "Export format: text, markdown, or pdf")
	searchCmd.Flags().IntP("limit", "n", 20, "Maximum number of hits to show")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(keysCmd)
}
