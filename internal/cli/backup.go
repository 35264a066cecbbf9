package cli

import (
	"path/filepath"

	"github.com/ksyq12/projctl/internal/backup"
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/store"
	"github.com/spf13/cobra"
)

var (
	backupOutput string
	forceRestore bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive all projects and Nginx configuration",
	Long: `Write a gzipped tarball of the projects directory and the Nginx
configuration directory. Without --output the archive goes to backup_dir
under root; an --output directory is a path on the host filesystem.

Examples:
  projctl backup
  projctl backup --output /mnt/backups`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Restore projects from a backup archive",
	Long: `Restore the files of a backup archive over the current ones. The
archive is checked before anything is written; entries outside the
projects and Nginx configuration directories are rejected.

The archive path is read from the host filesystem, not under root.

Examples:
  projctl restore /opt/backups/projctl-backup-20261019-103000.tar.gz
  projctl restore backup.tar.gz --force`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runRestore,
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Directory to write the archive to (default backup_dir)")
	restoreCmd.Flags().BoolVarP(&forceRestore, "force", "f", false, "Restore without confirmation")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

// archiver backs up the configured trees, keeping archives in archives
func (e *env) archiver(archives store.Store) *backup.Archiver {
	return backup.New(e.store, e.cfg.ProjectsDir, e.cfg.NginxConfDir).WithArchiveStore(archives)
}

// hostStore resolves paths given on the command line as they are
func hostStore() store.Store {
	return deps.StoreFactory.Create("/")
}

func runBackup(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	dest, archives := e.cfg.BackupDir, e.store
	if backupOutput != "" {
		if dest, err = filepath.Abs(backupOutput); err != nil {
			return errors.Usage("invalid output directory: " + err.Error())
		}
		archives = hostStore()
	}

	now := deps.Clock.Now()
	if dryRun {
		return printCommands("tar -czf " + filepath.Join(dest, backup.FileName(now)) +
			" " + e.cfg.ProjectsDir + " " + e.cfg.NginxConfDir)
	}

	path, count, err := e.archiver(archives).Create(dest, now)
	if err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"path":    path,
			"files":   count,
		},
		"Backed up %d files to %s", count, path,
	)
}

func runRestore(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	archive, err := filepath.Abs(args[0])
	if err != nil {
		return errors.Usage("invalid archive path: " + err.Error())
	}
	archives := hostStore()
	if !archives.Exists(archive) {
		return &errors.Error{Code: errors.ErrCodeNotFound, Subject: archive, Message: "archive not found"}
	}

	if dryRun {
		return printCommands("tar -xzf " + archive + " -C " + e.cfg.Root)
	}

	if !forceRestore && !confirm("Restoring overwrites existing project files. Continue? [y/N]: ") {
		return cancelled("Restore cancelled")
	}

	count, err := e.archiver(archives).Restore(archive)
	if err != nil {
		return err
	}

	progress("Run projctl deploy-all to apply the restored configuration")
	return outputResult(
		map[string]interface{}{
			"success": true,
			"archive": archive,
			"files":   count,
		},
		"Restored %d files from %s", count, archive,
	)
}
