// Package i18n holds the Hebrew and English strings the API returns.
// Hebrew is the default; English is picked by ?lang= or Accept-Language.
package i18n

import (
	"alcyxob/team-training/internal/domain"
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported response language.
type Lang string

const (
	Hebrew  Lang = "he"
	English Lang = "en"
)

// Key identifies a translatable message.
type Key string

const (
	MsgMissingSession     Key = "missing_session"
	MsgInvalidToken       Key = "invalid_token"
	MsgForbidden          Key = "forbidden"
	MsgNotFound           Key = "not_found"
	MsgUserNotFound       Key = "user_not_found"
	MsgLoginNotFound      Key = "login_not_found"
	MsgTrainingNotFound   Key = "training_not_found"
	MsgValidation         Key = "validation"
	MsgImageType          Key = "image_type"
	MsgImageTooLarge      Key = "image_too_large"
	MsgAdminDisabled      Key = "admin_disabled"
	MsgWrongAdminPassword Key = "wrong_admin_password"
	MsgStoreFailure       Key = "store_failure"
	MsgUnknownUser        Key = "unknown_user"
	MsgNoTrainings        Key = "no_trainings"
	MsgChartPerUser       Key = "chart_per_user"
	MsgChartPerType       Key = "chart_per_type"
	MsgChartPerTeam       Key = "chart_per_team"
)

var supported = []language.Tag{language.Hebrew, language.English}

var matcher = language.NewMatcher(supported)

var catalog = map[Lang]map[Key]string{
	Hebrew: {
		MsgMissingSession:     "נדרשת התחברות.",
		MsgInvalidToken:       "פג תוקף ההתחברות. נא להתחבר מחדש.",
		MsgForbidden:          "אין הרשאה לבצע פעולה זו.",
		MsgNotFound:           "הפריט המבוקש לא נמצא.",
		MsgUserNotFound:       "לא נמצאו נתוני משתמש.",
		MsgLoginNotFound:      "לא נמצא משתמש עם שם זה. נא לנסות שוב או להירשם.",
		MsgTrainingNotFound:   "האימון לא נמצא.",
		MsgValidation:         "נתונים חסרים או שגויים.",
		MsgImageType:          "ניתן להעלות קבצי תמונה בלבד.",
		MsgImageTooLarge:      "התמונה גדולה מדי.",
		MsgAdminDisabled:      "כניסת מנהל אינה זמינה.",
		MsgWrongAdminPassword: "סיסמה שגויה",
		MsgStoreFailure:       "אירעה שגיאה. אנא נסה שוב.",
		MsgUnknownUser:        "משתמש לא ידוע",
		MsgNoTrainings:        "עדיין לא נרשמו אימונים.",
		MsgChartPerUser:       "אימונים לפי משתמש",
		MsgChartPerType:       "סוגי אימונים",
		MsgChartPerTeam:       "אימונים לפי צוות",
	},
	English: {
		MsgMissingSession:     "Please log in.",
		MsgInvalidToken:       "Your session has expired. Please log in again.",
		MsgForbidden:          "You are not allowed to do that.",
		MsgNotFound:           "The requested item was not found.",
		MsgUserNotFound:       "User data not found.",
		MsgLoginNotFound:      "No user with this name. Try again or sign up.",
		MsgTrainingNotFound:   "Training not found.",
		MsgValidation:         "Missing or invalid data.",
		MsgImageType:          "Only image files can be uploaded.",
		MsgImageTooLarge:      "The image is too large.",
		MsgAdminDisabled:      "Admin login is not available.",
		MsgWrongAdminPassword: "Wrong password",
		MsgStoreFailure:       "Something went wrong. Please try again.",
		MsgUnknownUser:        "unknown user",
		MsgNoTrainings:        "No trainings recorded yet.",
		MsgChartPerUser:       "Trainings per user",
		MsgChartPerType:       "Training types",
		MsgChartPerTeam:       "Trainings per team",
	},
}

var teamLabels = map[Lang]map[domain.Team]string{
	Hebrew: {
		domain.TeamNorth:        "צפון",
		domain.TeamSouth:        "דרום",
		domain.TeamCenter:       "מרכז",
		domain.TeamHQ:           `מפל"ג`,
		domain.TeamGeneralStaff: `מטכ"לי`,
	},
	English: {
		domain.TeamNorth:        "North",
		domain.TeamSouth:        "South",
		domain.TeamCenter:       "Center",
		domain.TeamHQ:           "HQ",
		domain.TeamGeneralStaff: "General Staff",
	},
}

var typeLabels = map[Lang]map[domain.TrainingType]string{
	Hebrew: {
		domain.TrainingStrength: "כוח",
		domain.TrainingRun:      "ריצה",
	},
	English: {
		domain.TrainingStrength: "Strength",
		domain.TrainingRun:      "Run",
	},
}

// Match picks the response language. An explicit query value wins over the
// Accept-Language header; anything unsupported falls back to Hebrew.
func Match(query, acceptLanguage string) Lang {
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		if q == string(English) || strings.HasPrefix(q, "en-") {
			return English
		}
		return Hebrew
	}
	if acceptLanguage == "" {
		return Hebrew
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Hebrew
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Hebrew
	}
	if supported[idx] == language.English {
		return English
	}
	return Hebrew
}

// T returns the message for key, falling back to Hebrew and then to the key itself.
func T(lang Lang, key Key) string {
	if msg, ok := catalog[lang][key]; ok {
		return msg
	}
	if msg, ok := catalog[Hebrew][key]; ok {
		return msg
	}
	return string(key)
}

// TeamLabel returns the display name of a team. Unknown values are echoed back.
func TeamLabel(lang Lang, team domain.Team) string {
	if label, ok := teamLabels[lang][team]; ok {
		return label
	}
	return string(team)
}

// TrainingTypeLabel returns the display name of a training type.
func TrainingTypeLabel(lang Lang, t domain.TrainingType) string {
	if label, ok := typeLabels[lang][t]; ok {
		return label
	}
	return string(t)
}

// UnknownUser is the label shown for trainings whose user no longer exists.
func UnknownUser(lang Lang) string {
	return T(lang, MsgUnknownUser)
}
