package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/pathakanu/bendonHelper/internal/i18n"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/scheduler"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Show when the next lunch reminder fires",
	RunE:  runAlarm,
}

var testNotificationCmd = &cobra.Command{
	Use:   "test-notification",
	Short: "Show a test reminder notification",
	RunE:  runTestNotification,
}

func runAlarm(cmd *cobra.Command, _ []string) error {
	api := apiFor(cmd)
	a, err := api.alarm(cmd.Context(), scheduler.AlarmName)
	if err != nil {
		pterm.Warning.Println("No reminder is scheduled yet.")
		return err
	}

	locale := ""
	if cfg, err := api.settings(cmd.Context()); err == nil {
		locale = cfg.Locale
	}
	bundle := i18n.Resolve(locale)
	next := a.ScheduledTime.Local()
	pterm.Info.Printfln("%s %s (%s, every %s)",
		bundle.Weekdays[next.Weekday()], next.Format("2006-01-02 15:04"),
		strings.ToLower(bundle.ReminderTitle), time.Duration(a.PeriodInMinutes)*time.Minute)
	return nil
}

func runTestNotification(cmd *cobra.Command, _ []string) error {
	err := apiFor(cmd).runtime.Send(cmd.Context(), messenger.Message{Action: messenger.ActionTestNotification}, nil)
	if err != nil {
		pterm.Error.Println("Could not reach the Bendon Helper server.")
		return err
	}
	pterm.Success.Println("Test notification sent.")
	return nil
}

func parseDay(day string) (time.Weekday, error) {
	n, err := strconv.Atoi(day)
	if err != nil || n < 0 || n > 6 {
		return 0, scheduler.ErrInvalidReminder
	}
	return time.Weekday(n), nil
}
