package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tgagor/staged-dockerfiles/pkg/catalog"
	"github.com/tgagor/staged-dockerfiles/pkg/config"
	"github.com/tgagor/staged-dockerfiles/pkg/engine"
	"github.com/tgagor/staged-dockerfiles/pkg/graph"
	"github.com/tgagor/staged-dockerfiles/pkg/task"
	"github.com/tgagor/staged-dockerfiles/pkg/util"
)

var BuildVersion string // Will be set dynamically at build time.
var appName string = "sd"
var flags config.Flags

var cmd = &cobra.Command{
	Use:   appName + " [task...]",
	Short: "A staged Docker image pipeline: build sources, package them inside builder images, assemble runtime images.",
	Long: `A CLI tool that derives a task graph from your source and image directory
layout and drives an external container engine through it.

Point it at a directory tree of src/<project> and images/<name>/<tag>/Dockerfile
and ask for a task; prerequisites run first, each at most once.`,
	Run: func(cmd *cobra.Command, args []string) {
		initLogger(flags.Verbose)

		// If version flag is provided, show the version and exit.
		if flags.PrintVersion {
			fmt.Printf("%s version: %s\n", appName, BuildVersion)
			return
		}

		if flags.Verbose {
			log.Debug().Msg("Verbose mode enabled.")
		}
		if flags.DryRun {
			log.Warn().Msg("Dry run enabled - no actions will be executed.")
		}

		cfg, err := config.Load(flags.BuildFile)
		util.FailOnError(err, "Error during config loading")
		cfg.FromEnv()
		log.Debug().Interface("config", cfg).Msg("Loaded")

		cat, err := catalog.Scan(cfg)
		util.FailOnError(err, "Error during directory scan")

		eng := engine.New(flags.Engine).SetVerbose(flags.Verbose)
		reg := graph.Build(cfg, cat, eng)

		for _, edge := range reg.Prune() {
			log.Warn().Str("edge", edge).Msg("Dropping dependency on undefined task")
		}
		util.FailOnError(reg.Validate(), "Invalid task graph")

		if flags.List {
			listTasks(reg)
			return
		}

		targets := args
		if len(targets) == 0 {
			targets = []string{graph.AggregateDefault}
		}

		runner := task.NewRunner(reg).DryRun(flags.DryRun)
		if err := runner.Run(cmd.Context(), targets...); err != nil {
			util.FailOnError(err, "Task execution failed")
		}
	},
}

func init() {
	if BuildVersion == "" {
		BuildVersion = "development" // Fallback if not set during build
	}

	cmd.PersistentFlags().StringVarP(&flags.BuildFile, "config", "c", "", "Path to an optional YAML build file")

	cmd.Flags().StringVar(&flags.Engine, "engine", "docker", "Container engine binary to use (docker, podman)")
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "Print the graph walk but don't execute actions")
	cmd.Flags().BoolVarP(&flags.List, "list", "l", false, "List all derived tasks with their prerequisites and exit")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Increase verbosity of output")
	cmd.Flags().BoolVarP(&flags.PrintVersion, "version", "V", false, "Display the application version and exit")
}

func main() {
	if err := cmd.Execute(); err != nil {
		util.FailOnError(err)
	}
}

func listTasks(reg *task.Registry) {
	for _, name := range reg.Names() {
		t, _ := reg.Get(name)
		if len(t.Deps) > 0 {
			fmt.Printf("%s <- %s\n", name, strings.Join(t.Deps, " "))
		} else {
			fmt.Println(name)
		}
	}
}

func initLogger(verbose bool) {
	output := zerolog.ConsoleWriter{Out: colorable.NewColorableStderr()}
	log.Logger = log.Output(output)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
