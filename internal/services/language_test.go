package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckLanguageTag(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"en", "pt", "pt-BR", "es-419", "zh-Hant"} {
		assert.NoError(t, checkLanguageTag(ok), ok)
	}
	for _, bad := range []string{"xx-invalid", "", "!!", "english"} {
		err := checkLanguageTag(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestCheckLanguageIn(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkLanguageIn("PT", xttsLanguages))
	assert.ErrorIs(t, checkLanguageIn("fr", xttsLanguages), ErrInvalidInput)
}

func TestGTTSLanguageParam(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "zh-CN", gttsLanguageParam("zh_cn"))
	assert.Equal(t, "pt", gttsLanguageParam("PT"))
}

func TestRegionalLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pt-BR", regionalLanguage("pt-BR"))
	assert.Equal(t, "en-US", regionalLanguage("en-us"))
	assert.Equal(t, "", regionalLanguage("pt"), "no region given")
	assert.Equal(t, "", regionalLanguage("xx-invalid"))
}
