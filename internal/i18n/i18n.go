// Package i18n maps a stored locale preference to the strings shown to the user.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported locale tags.
const (
	English            = "en"
	TraditionalChinese = "zh-TW"
)

// Bundle is the complete set of user-facing strings for one display language.
type Bundle struct {
	Locale          string
	ReminderTitle   string
	ReminderMessage string
	TestTitle       string
	TestMessage     string
	SettingsSaved   string
	FillRefresh     string
	Weekdays        [7]string
}

var bundles = map[string]Bundle{
	English: {
		Locale:          English,
		ReminderTitle:   "Lunch Reminder",
		ReminderMessage: "Time to order your bento! Don't forget.",
		TestTitle:       "Test Reminder",
		TestMessage:     "This is a test notification!",
		SettingsSaved:   "Settings saved!",
		FillRefresh:     "Could not connect to the content script. Please refresh the page and try again.",
		Weekdays:        [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	},
	TraditionalChinese: {
		Locale:          TraditionalChinese,
		ReminderTitle:   "午餐提醒",
		ReminderMessage: "該買便當囉！記得嗎？",
		TestTitle:       "測試提醒",
		TestMessage:     "這是一則測試通知！",
		SettingsSaved:   "設定已儲存！",
		FillRefresh:     "無法連線到頁面腳本，請重新整理頁面後再試一次。",
		Weekdays:        [7]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"},
	},
}

// Resolve returns the bundle for locale. Any tag starting with "zh" maps to
// Traditional Chinese; everything else, including an empty tag, maps to English.
func Resolve(locale string) Bundle {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "zh") {
		return bundles[TraditionalChinese]
	}
	return bundles[English]
}

// Supported lists the locale tags that have a bundle.
func Supported() []string {
	return []string{English, TraditionalChinese}
}

// PlatformLocale converts a POSIX locale value such as "zh_TW.UTF-8" into a
// BCP-47 tag. Unset or unparseable values yield English.
func PlatformLocale(posix string) string {
	value := posix
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "-")
	if value == "" || value == "C" || value == "POSIX" {
		return English
	}

	tag, err := language.Parse(value)
	if err != nil || tag == language.Und {
		return English
	}
	return tag.String()
}
