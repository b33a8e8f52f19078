// Package i18n holds the widget's user-facing strings. Traditional Chinese is
// the source locale of the app; English is the fallback for other clients.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	KeyUpcoming    = "Upcoming (%d)"
	KeyToday       = "Today (%d)"
	KeyNoCourses   = "No courses today"
	KeyOverflow    = "%d more courses..."
	KeyUnknownTime = "unknown"
	KeyLoading     = "Loading courses..."
	KeyEmptyHint   = "Enjoy your day!"
	KeyLoadFailed  = "Failed to load courses"
)

var (
	TraditionalChinese = language.MustParse("zh-TW")
	English            = language.English

	supported = []language.Tag{TraditionalChinese, English}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(English))
	zh := map[string]string{
		KeyUpcoming:    "即將到來 (%d)",
		KeyToday:       "今日課程 (%d)",
		KeyNoCourses:   "今日無課程",
		KeyOverflow:    "還有 %d 門課程...",
		KeyUnknownTime: "未知時間",
		KeyLoading:     "課程載入中...",
		KeyEmptyHint:   "享受美好的一天！",
		KeyLoadFailed:  "課程載入失敗",
	}
	for key, msg := range zh {
		if err := b.SetString(TraditionalChinese, key, msg); err != nil {
			panic(fmt.Sprintf("i18n: zh-TW %q: %v", key, err))
		}
		if err := b.SetString(English, key, key); err != nil {
			panic(fmt.Sprintf("i18n: en %q: %v", key, err))
		}
	}
	return b
}

// Supported returns the locales with a full catalog.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// ParseTag resolves a single language value to a supported tag.
func ParseTag(raw string) (language.Tag, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.Und, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

// Resolve picks the locale from an explicit lang value, then an
// Accept-Language header, then fallback.
func Resolve(lang, acceptLanguage string, fallback language.Tag) language.Tag {
	if tag, ok := ParseTag(lang); ok {
		return tag
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx]
			}
		}
	}
	return fallback
}

// Printer formats widget messages for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}
