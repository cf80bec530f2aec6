package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"git.unix.lgbt/diamondburned/pwatcher/pwatcher"
	"git.unix.lgbt/diamondburned/pwatcher/pwatcher/journal"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	serverDir   string
	serverJar   string
	pluginsDir  string
	configFile  string
	journalFile string
	javaPath    string
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Fatalln(err)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pwatcher",
		Short: "Restart a game server whenever a plugin jar changes",
		Long: "pwatcher launches the server jar with a heap sized from the host's memory,\n" +
			"then relaunches it whenever a plugin jar is added to the plugins directory\n" +
			"while the server is not running.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return start()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&serverDir, "dir", "d", ".", "server directory")
	flags.StringVar(&serverJar, "jar", "server.jar", "server jar, relative to --dir")
	flags.StringVar(&pluginsDir, "plugins", "plugins", "plugins directory, relative to --dir")
	flags.StringVarP(&configFile, "config", "c", "pwatchercfg.json", "config file, relative to --dir")
	flags.StringVarP(&journalFile, "journal", "j", "pwatcher.journal", "journal file, relative to --dir")
	flags.StringVar(&javaPath, "java", "java", "java executable")

	root.AddCommand(flagsCommand(), journalCommand())
	return root
}

func flagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Print the server command line without starting anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := resolvePaths()
			if err != nil {
				return err
			}

			c := pwatcher.NewCoordinator(paths, resolve(paths, configFile), stderrJournaler())

			plan, err := c.Prepare()
			if err != nil {
				return err
			}

			spec := plan.LaunchSpec(paths)

			quoted := make([]string, len(spec.Args))
			for i, arg := range spec.Args {
				quoted[i] = shellQuote(arg)
			}

			fmt.Println("cd", shellQuote(spec.Dir))
			fmt.Println(strings.Join(quoted, " "))
			return nil
		},
	}
}

func journalCommand() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print the newest journal entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 0 {
				return fmt.Errorf("--lines must not be negative, got %d", n)
			}

			paths, err := resolvePaths()
			if err != nil {
				return err
			}

			entries, err := journal.ReadLast(resolve(paths, journalFile), n)
			if err != nil {
				return errors.Wrap(err, "failed to read journal")
			}

			h := journal.NewHumanWriter(os.Stdout)
			for _, entry := range entries {
				h.Now = func() time.Time { return entry.Time }
				h.Write(entry.Event)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of entries to print")
	return cmd
}

func start() error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	j, err := journal.NewFileLockJournaler(resolve(paths, journalFile))
	if err != nil {
		if errors.Is(err, journal.ErrLockedElsewhere) {
			// Non-fatal error.
			log.Println("pwatcher is already running")
			return nil
		}

		return errors.Wrap(err, "failed to acquire journal lock")
	}
	defer j.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The lock and no-op start events only go to the journal file.
	console := journal.Exclude(
		journal.NewHumanWriter(os.Stdout),
		&pwatcher.EventAcquired{},
		&pwatcher.EventProcessSkipped{},
	)

	journaler := journal.MultiWriter(j, console)

	c := pwatcher.NewCoordinator(paths, resolve(paths, configFile), journaler)
	return c.Run(ctx)
}

func resolvePaths() (pwatcher.Paths, error) {
	dir, err := filepath.Abs(serverDir)
	if err != nil {
		return pwatcher.Paths{}, errors.Wrap(err, "failed to resolve server directory")
	}

	// Ensure that, if the server directory exists, that it is an actual
	// directory.
	if stat, err := os.Stat(dir); err == nil && !stat.IsDir() {
		return pwatcher.Paths{}, fmt.Errorf("server path %s is not a directory", dir)
	}

	paths := pwatcher.DefaultPaths(dir)
	paths.Java = javaPath
	paths.ServerJar = serverJar
	paths.Plugins = pluginsDir

	return paths, nil
}

func resolve(paths pwatcher.Paths, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(paths.ServerDir, path)
}

func stderrJournaler() pwatcher.Journaler {
	return journal.NewHumanWriter(os.Stderr)
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
