package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/xlsx"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Fetch a group timetable",
	Long: `Fetch the timetable of a group for a date range. Prints the 24-week schedule as JSON,
a single week with --week, or writes a workbook with --xlsx.`,
	Example: `  cistctl schedule -g ПЗПІ-22-1 --from 01.09.2024 --to 31.01.2025
  cistctl schedule -g ПЗПІ-22-1 --from 01.09.2024 --to 31.01.2025 --week 3
  cistctl schedule -g ПЗПІ-22-1 --from 01.09.2024 --to 31.01.2025 --xlsx schedule.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		output, _ := cmd.Flags().GetString("xlsx")
		week, _ := cmd.Flags().GetInt("week")

		if week < 0 || week > domain.WeeksInTerm {
			return fmt.Errorf("week must be between 1 and %d", domain.WeeksInTerm)
		}

		service, err := newScheduleService()
		if err != nil {
			return err
		}

		schedule, err := service.GetSchedule(cmd.Context(), group, from, to)
		if err != nil {
			return fmt.Errorf("failed to fetch schedule: %w", err)
		}

		switch {
		case output != "":
			return exportXlsx(cmd.OutOrStdout(), group, schedule, output)
		case week > 0:
			printWeek(cmd.OutOrStdout(), group, week, schedule)
			return nil
		default:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"group":    group,
				"schedule": schedule,
			})
		}
	},
}

func exportXlsx(w io.Writer, group string, schedule *domain.WeekSchedule, output string) error {
	buf, err := xlsx.NewXlsxExporter().ExportSchedule(group, schedule)
	if err != nil {
		return fmt.Errorf("failed to generate xlsx: %w", err)
	}

	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(w, "Successfully exported %d lessons to %s\n", schedule.LessonsCount(), output)
	return nil
}

func printWeek(w io.Writer, group string, week int, schedule *domain.WeekSchedule) {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(1, 0)
	dayStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s, week %d", group, week)))

	days, _ := schedule.Week(week)
	if days.IsEmpty() {
		fmt.Fprintln(w, "No lessons this week.")
		return
	}

	for _, day := range days.Days() {
		fmt.Fprintln(w, dayStyle.Render(day))
		for _, lesson := range days.Lessons(day) {
			lessonType := ""
			if lesson.Type != domain.LessonTypeUnknown {
				lessonType = " " + typeStyle.Render(string(lesson.Type))
			}
			fmt.Fprintf(w, "  %s  %s%s\n", timeStyle.Render(lesson.Time), lesson.Lesson, lessonType)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringP("group", "g", "", "Group name as listed in the groups file (e.g. ПЗПІ-22-1)")
	scheduleCmd.Flags().String("from", "", "First date of the range (DD.MM.YYYY)")
	scheduleCmd.Flags().String("to", "", "Last date of the range (DD.MM.YYYY)")
	scheduleCmd.Flags().String("xlsx", "", "Write the schedule to this .xlsx file instead of printing it")
	scheduleCmd.Flags().IntP("week", "w", 0, "Print a single week (1-24) instead of JSON")
	scheduleCmd.MarkFlagRequired("group")
	scheduleCmd.MarkFlagRequired("from")
	scheduleCmd.MarkFlagRequired("to")
}
