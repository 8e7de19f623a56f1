package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/cache"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/cist"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/groups"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/logger"
	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/services"
)

var (
	groupsFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cistctl",
	Short: "Fetch NURE CIST group timetables from the command line",
	Long: `cistctl resolves a group name from the groups file, downloads its timetable
from CIST and prints it as JSON, as a single week or exports it to .xlsx.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&groupsFile, "groups-file", "", "Path to the name:id groups file (defaults to GROUPS_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
}

// newScheduleService собирает тот же стек, что и HTTP сервис, но без кэша между запусками
func newScheduleService() (*services.ScheduleService, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if groupsFile != "" {
		cfg.Groups.File = groupsFile
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.NewZapLogger(level, "console", cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	directory, err := groups.LoadFile(cfg.Groups.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	return services.NewScheduleService(
		directory,
		cist.NewCistAdapter(cfg, log.WithModule("CistAdapter")),
		cist.NewTimetableParser(domain.NewLessonTypeClassifier(cfg.Cist.LessonTypeMarkers)),
		cache.NewCacheAdapter(cfg, log.WithModule("CacheAdapter")),
		log.WithModule("ScheduleService"),
	), nil
}
