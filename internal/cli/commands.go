package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/schedule/internal/calendar"
	"github.com/pfrederiksen/schedule/internal/logger"
	"github.com/pfrederiksen/schedule/internal/schedule"
)

func (a *app) listCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all schedules in stored order",
		Long: `List every schedule as a tab-separated table:

  ID	START	END	SUBJECT

Start and end are shown as YYYY-MM-DD HH:MM. A calendar file that does
not exist yet lists as an empty table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}

			cal, err := a.loadForRead()
			if err != nil {
				return err
			}

			logger.IncrCounter("list.ok")
			return WriteRows(a.out, cal.Rows(), f)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(FormatText), "Output format: text, json or yaml")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <subject> <start> <end>",
		Short: "Add a schedule unless it overlaps an existing one",
		Long: `Add a schedule covering [start, end).

Start and end accept YYYY-MM-DDTHH:MM[:SS], YYYY-MM-DD HH:MM[:SS] or a
natural phrase such as "tomorrow 6pm". A schedule may begin exactly when
another ends. The calendar file is created if it does not exist.`,
		Example: `  schedule add "Team meeting" 2024-01-01T18:00 2024-01-01T19:00`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := strings.TrimSpace(args[0])
			if subject == "" {
				return errors.New("subject must not be empty")
			}

			now := a.now()
			start, err := schedule.ParseTimestamp(args[1], now)
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}
			end, err := schedule.ParseTimestamp(args[2], now)
			if err != nil {
				return fmt.Errorf("invalid end: %w", err)
			}
			if err := schedule.ValidateRange(start, end); err != nil {
				logger.IncrCounter("add.rejected")
				return err
			}

			began := time.Now()
			cal, created, err := a.store.LoadOrCreate()
			logger.RecordTiming("storage.load", time.Since(began))
			if err != nil {
				return err
			}
			if created {
				logger.Info("created calendar file", logger.Fields{"path": a.store.Path()})
				fmt.Fprintln(a.out, a.outUI.RenderWarn("No calendar found, created "+a.store.Path()))
			}

			s, err := cal.Add(subject, start, end)
			if err != nil {
				logger.IncrCounter("add.rejected")
				return err
			}

			if err := a.save(cal); err != nil {
				return err
			}

			logger.IncrCounter("add.ok")
			fmt.Fprintln(a.out, a.outUI.RenderPass(fmt.Sprintf("Added schedule %d: %q (%s)", s.ID, s.Subject, s.Span())))
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete the schedule with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cal, err := a.load()
			if err != nil {
				return err
			}

			if !cal.Delete(id) {
				logger.IncrCounter("delete.not_found")
				return fmt.Errorf("schedule %d: %w", id, schedule.ErrNotFound)
			}

			if err := a.save(cal); err != nil {
				return err
			}

			logger.IncrCounter("delete.ok")
			fmt.Fprintln(a.out, a.outUI.RenderPass(fmt.Sprintf("Deleted schedule %d", id)))
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		ids    []uint
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export schedules as an iCalendar (.ics) file",
		Long: `Export schedules as an iCalendar document that other calendar
applications can import. Times are written as floating local times.`,
		Example: `  schedule export --output schedules.ics
  schedule export --id 0 --id 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := a.loadForRead()
			if err != nil {
				return err
			}

			selected := make([]uint64, 0, len(ids))
			for _, id := range ids {
				selected = append(selected, uint64(id))
			}

			content, err := calendar.GenerateICS(cal, a.now(), selected...)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := fmt.Fprint(a.out, content)
				return err
			}

			if err := os.WriteFile(output, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			logger.IncrCounter("export.ok")
			fmt.Fprintln(a.out, a.outUI.RenderPass("Exported calendar to "+output))
			return nil
		},
	}

	cmd.Flags().UintSliceVar(&ids, "id", nil, "Schedule id to export (repeatable, default all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a non-negative integer", s)
	}
	return id, nil
}

// load reads the calendar; a missing file is an error
func (a *app) load() (*schedule.Calendar, error) {
	began := time.Now()
	cal, err := a.store.Load()
	logger.RecordTiming("storage.load", time.Since(began))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no calendar at %s: %w", a.store.Path(), err)
		}
		return nil, err
	}

	logger.Debug("calendar loaded", logger.Fields{
		"path":      a.store.Path(),
		"schedules": cal.Len(),
	})
	return cal, nil
}

// loadForRead treats a missing file as an empty calendar and never writes
func (a *app) loadForRead() (*schedule.Calendar, error) {
	cal, err := a.load()
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("calendar file missing, using empty calendar", logger.Fields{"path": a.store.Path()})
		return schedule.New(), nil
	}
	return cal, err
}

func (a *app) save(cal *schedule.Calendar) error {
	began := time.Now()
	err := a.store.Save(cal)
	logger.RecordTiming("storage.save", time.Since(began))
	if err != nil {
		logger.Error("saving calendar", logger.Fields{"path": a.store.Path()}, err)
		return fmt.Errorf("saving calendar: %w", err)
	}

	logger.Debug("calendar saved", logger.Fields{
		"path":      a.store.Path(),
		"schedules": cal.Len(),
		"next_id":   cal.NextID,
	})
	return nil
}
