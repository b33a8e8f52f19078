package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterTranslations(t *testing.T) {
	zh := Printer(TraditionalChinese)
	en := Printer(English)

	assert.Equal(t, "今日課程 (2)", zh.Sprintf(KeyToday, 2))
	assert.Equal(t, "即將到來 (1)", zh.Sprintf(KeyUpcoming, 1))
	assert.Equal(t, "今日無課程", zh.Sprintf(KeyNoCourses))
	assert.Equal(t, "還有 3 門課程...", zh.Sprintf(KeyOverflow, 3))
	assert.Equal(t, "Today (2)", en.Sprintf(KeyToday, 2))
	assert.Equal(t, "No courses today", en.Sprintf(KeyNoCourses))
}

func TestResolvePrecedence(t *testing.T) {
	assert.Equal(t, English, Resolve("en", "zh-TW", TraditionalChinese))
	assert.Equal(t, English, Resolve("", "en-US,en;q=0.9", TraditionalChinese))
	assert.Equal(t, TraditionalChinese, Resolve("", "zh-Hant-TW", English))
	assert.Equal(t, TraditionalChinese, Resolve("not a tag!", "", TraditionalChinese))
	assert.Equal(t, English, Resolve("", "", English))
}

func TestParseTag(t *testing.T) {
	tag, ok := ParseTag("zh-TW")
	assert.True(t, ok)
	assert.Equal(t, TraditionalChinese, tag)

	_, ok = ParseTag("")
	assert.False(t, ok)
}

func TestCatalogCoversEveryKey(t *testing.T) {
	assert.NotPanics(t, func() { buildCatalog() })

	zh := Printer(TraditionalChinese)
	assert.Equal(t, "課程載入中...", zh.Sprintf(KeyLoading))
	assert.Equal(t, "享受美好的一天！", zh.Sprintf(KeyEmptyHint))
	assert.Equal(t, "課程載入失敗", zh.Sprintf(KeyLoadFailed))
	assert.Equal(t, "未知時間", zh.Sprintf(KeyUnknownTime))
}
