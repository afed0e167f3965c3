// Package locale renders message keys to human-readable strings using the
// file manager's language tables.
package locale

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
)

//go:embed en.json
var english []byte

// Catalog maps message keys to printf templates for one culture.
type Catalog struct {
	culture  string
	messages map[string]string
}

// English returns the built-in English catalog.
func English() *Catalog {
	c, err := Parse("en", english)
	if err != nil {
		panic(fmt.Sprintf("locale: embedded table: %v", err))
	}
	return c
}

// Parse decodes a language table. Language files are flat JSON objects
// despite their .js extension.
func Parse(culture string, data []byte) (*Catalog, error) {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s language table: %w", culture, err)
	}

	messages := make(map[string]string, len(raw))
	for key, v := range raw {
		if msg, ok := v.(string); ok {
			messages[key] = msg
		}
	}
	return &Catalog{culture: culture, messages: messages}, nil
}

// Load reads a language file and layers it over the English table, so
// keys the translation misses still render.
func Load(culture, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read language file: %w", err)
	}

	translated, err := Parse(culture, data)
	if err != nil {
		return nil, err
	}

	base := English()
	for key, msg := range translated.messages {
		base.messages[key] = msg
	}
	base.culture = culture
	return base, nil
}

// Culture returns the catalog's culture code.
func (c *Catalog) Culture() string {
	return c.culture
}

// Lookup returns the template for key, or key itself when untranslated.
func (c *Catalog) Lookup(key string) string {
	if msg, ok := c.messages[key]; ok && msg != "" {
		return msg
	}
	return key
}

// placeholders are the verbs a language table may use for a parameter.
const placeholders = "sdifjoOc"

// Format renders key with positional params. Each placeholder takes the
// next param, "%%" is a literal percent, and params left over once the
// placeholders run out are appended separated by spaces. Without params
// the template is returned untouched.
func (c *Catalog) Format(key string, params ...interface{}) string {
	msg := c.Lookup(key)
	if len(params) == 0 {
		return msg
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(msg); i++ {
		if msg[i] != '%' || i+1 == len(msg) {
			b.WriteByte(msg[i])
			continue
		}
		switch verb := msg[i+1]; {
		case verb == '%':
			b.WriteByte('%')
			i++
		case next < len(params) && strings.IndexByte(placeholders, verb) >= 0:
			b.WriteString(fmt.Sprint(params[next]))
			next++
			i++
		default:
			b.WriteByte('%')
		}
	}
	for _, p := range params[next:] {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(p))
	}
	return b.String()
}
