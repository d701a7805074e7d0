// Package translate formats user-facing messages for the user's locale.
//
// Error values and diagnostics are built with From; disassembly and guest
// output are not, since they are parsed back by tools.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer *message.Printer
	tag     language.Tag
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("rvsim: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	tag = message.MatchLanguage(locales...)
	printer = message.NewPrinter(tag)
}

// Use overrides the locale taken from the environment, as a BCP 47 tag
// such as "de-DE". Sentinel errors already created keep their text.
func Use(name string) (err error) {
	parsed, err := language.Parse(name)
	if err != nil {
		return
	}

	tag = parsed
	printer = message.NewPrinter(tag)

	return
}

// Language returns the locale messages are formatted for.
func Language() language.Tag {
	return tag
}

// From an en-US Sprintf() format, translate to string.
//
// Numbers formatted with %d are grouped per the locale, so callers must not
// use From for text that is parsed back.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
