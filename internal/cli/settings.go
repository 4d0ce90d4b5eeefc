package cli

import (
	"encoding/json"
	"os"

	"github.com/pathakanu/bendonHelper/internal/i18n"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change reminder and profile settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save reminder and profile settings",
	RunE:  runSettingsSet,
}

// settingFlags maps flag names to setting keys.
var settingFlags = map[string]string{
	"day":      model.KeyReminderDay,
	"time":     model.KeyReminderTime,
	"locale":   model.KeyLocale,
	"lastname": model.KeyLastname,
	"email":    model.KeyEmail,
	"slack-id": model.KeySlackID,
	"staff-id": model.KeyStaffID,
}

func init() {
	settingsGetCmd.Flags().StringP("output", "o", "", "Output format (json)")

	f := settingsSetCmd.Flags()
	f.String("day", "", "Reminder weekday, 0=Sunday (1-5 on workdays)")
	f.String("time", "", "Reminder time as HH:MM")
	f.String("locale", "", "Display language, e.g. en or zh-TW")
	f.String("lastname", "", "Last name")
	f.String("email", "", "Email")
	f.String("slack-id", "", "Slack ID")
	f.String("staff-id", "", "Staff ID")
	f.Bool("local", false, "Write profile fields to this device only")

	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}

func runSettingsGet(cmd *cobra.Command, _ []string) error {
	cfg, err := apiFor(cmd).settings(cmd.Context())
	if err != nil {
		pterm.Error.Println("Could not reach the Bendon Helper server.")
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	weekday := cfg.ReminderDay
	if r, err := parseDay(cfg.ReminderDay); err == nil {
		weekday = i18n.Resolve(cfg.Locale).Weekdays[r]
	}
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"Setting", "Value"},
		{"Reminder day", weekday},
		{"Reminder time", cfg.ReminderTime},
		{"Locale", cfg.Locale},
		{"Lastname", cfg.Profile.Lastname},
		{"Email", cfg.Profile.Email},
		{"Slack ID", cfg.Profile.SlackID},
		{"Staff ID", cfg.Profile.StaffID},
	}).WithHasHeader().Render()
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	values := make(map[string]string)
	for flag, key := range settingFlags {
		if cmd.Flags().Changed(flag) {
			values[key], _ = cmd.Flags().GetString(flag)
		}
	}
	if len(values) == 0 {
		return cmd.Help()
	}

	scope := model.ScopeSync
	if local, _ := cmd.Flags().GetBool("local"); local {
		scope = model.ScopeLocal
	}

	cfg, err := apiFor(cmd).saveSettings(cmd.Context(), scope, values)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	pterm.Success.Println(i18n.Resolve(cfg.Locale).SettingsSaved)
	return nil
}
