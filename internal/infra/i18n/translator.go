package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/model"
)

//go:embed locales
var LocalesFS embed.FS

// Translator holds the messages of one language.
type Translator struct {
	translations map[string]string
}

// NewTranslator reads locales/<code>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(data)
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the key itself when no message exists.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Has(key string) bool {
	_, ok := t.translations[key]
	return ok
}

// Bundle serves every supported language, falling back to the default one.
type Bundle struct {
	byLang map[model.Language]*Translator
}

// NewBundle loads one locale file per supported language from fsys.
func NewBundle(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{byLang: make(map[model.Language]*Translator, 2)}
	for _, lang := range []model.Language{model.LanguageFR, model.LanguageEN} {
		tr, err := NewTranslator(fsys, lang.Code())
		if err != nil {
			return nil, err
		}
		b.byLang[lang] = tr
	}
	return b, nil
}

// NewEmbeddedBundle uses the locales compiled into the binary.
func NewEmbeddedBundle() (*Bundle, error) {
	return NewBundle(LocalesFS)
}

func (b *Bundle) T(lang model.Language, key string, args ...interface{}) string {
	tr, ok := b.byLang[lang]
	if !ok || !tr.Has(key) {
		tr, ok = b.byLang[model.DefaultLanguage]
		if !ok {
			return key
		}
	}
	return tr.T(key, args...)
}
