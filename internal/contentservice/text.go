package contentservice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	spaceRe      = regexp.MustCompile(`\s+`)
	numericRefRe = regexp.MustCompile(`&#(\d+);`)
)

// DecodeEntities replaces the HTML entities the content API commonly emits
// in rendered titles and excerpts.
func DecodeEntities(text string) string {
	if text == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#039;", "'",
		"&nbsp;", " ",
	)
	text = replacer.Replace(text)

	return numericRefRe.ReplaceAllStringFunc(text, func(m string) string {
		code, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil {
			return m
		}
		return string(rune(code))
	})
}

// StripHTML removes tags from a rendered fragment and normalizes the
// remaining whitespace.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}

	text := tagRe.ReplaceAllString(html, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// LimitWords truncates text to at most limit words, appending an ellipsis
// when anything was cut.
func LimitWords(text string, limit int) string {
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ") + "..."
}

// TextAreaToLines splits a multi-line field-bag value into trimmed,
// non-empty lines. Specialties, certifications and benefit blocks are
// stored this way upstream.
func TextAreaToLines(textArea string) []string {
	if textArea == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(textArea, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var italianMonths = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

// FormatDate renders an API date in the site's it-IT long form, e.g.
// "12 marzo 2025". The input is returned unchanged if it does not parse.
func FormatDate(dateString string) string {
	t, err := time.Parse(time.RFC3339, dateString)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", dateString)
	}
	if err != nil {
		return dateString
	}

	return fmt.Sprintf("%d %s %d", t.Day(), italianMonths[t.Month()-1], t.Year())
}

type ScheduleEntry struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

var weekdays = []struct {
	key   string
	label string
}{
	{"schedule_monday", "Lunedì"},
	{"schedule_tuesday", "Martedì"},
	{"schedule_wednesday", "Mercoledì"},
	{"schedule_thursday", "Giovedì"},
	{"schedule_friday", "Venerdì"},
	{"schedule_saturday", "Sabato"},
	{"schedule_sunday", "Domenica"},
}

// FormattedSchedule extracts the per-weekday schedule strings from a
// trainer's field bag, skipping days without hours.
func FormattedSchedule(tr *Trainer) []ScheduleEntry {
	if tr == nil {
		return nil
	}

	var schedule []ScheduleEntry
	for _, day := range weekdays {
		if hours := acfString(tr.Acf, day.key); hours != "" {
			schedule = append(schedule, ScheduleEntry{Day: day.label, Time: hours})
		}
	}
	return schedule
}

// FormattedSocials extracts the trainer's social profile links.
func FormattedSocials(tr *Trainer) []SocialLink {
	if tr == nil {
		return nil
	}

	var socials []SocialLink
	if u := acfString(tr.Acf, "instagram_url"); u != "" {
		socials = append(socials, SocialLink{Platform: "instagram", URL: u})
	}
	if u := acfString(tr.Acf, "facebook_url"); u != "" {
		socials = append(socials, SocialLink{Platform: "facebook", URL: u})
	}
	return socials
}

func acfString(acf map[string]any, key string) string {
	if acf == nil {
		return ""
	}
	s, _ := acf[key].(string)
	return s
}
