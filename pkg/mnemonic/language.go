package mnemonic

import (
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/text/unicode/norm"
)

// WordlistSize is the number of words in every BIP39 list.
const WordlistSize = 2048

// Language names.
const (
	English            = "english"
	Spanish            = "spanish"
	French             = "french"
	Italian            = "italian"
	Japanese           = "japanese"
	Korean             = "korean"
	ChineseSimplified  = "chinese_simplified"
	ChineseTraditional = "chinese_traditional"
	Czech              = "czech"
)

type language struct {
	name      string
	words     []string
	separator string

	once  sync.Once
	index map[string]int
}

// indexOf returns the position of word in the list. Both sides are
// compared in NFKD form so composed and decomposed input match.
func (l *language) indexOf(word string) (int, bool) {
	l.once.Do(func() {
		l.index = make(map[string]int, len(l.words))
		for i, w := range l.words {
			l.index[norm.NFKD.String(w)] = i
		}
	})
	i, ok := l.index[norm.NFKD.String(word)]
	return i, ok
}

var languages = []*language{
	{name: English, words: wordlists.English, separator: " "},
	{name: Spanish, words: wordlists.Spanish, separator: " "},
	{name: French, words: wordlists.French, separator: " "},
	{name: Italian, words: wordlists.Italian, separator: " "},
	{name: Japanese, words: wordlists.Japanese, separator: "\u3000"},
	{name: Korean, words: wordlists.Korean, separator: " "},
	{name: ChineseSimplified, words: wordlists.ChineseSimplified, separator: " "},
	{name: ChineseTraditional, words: wordlists.ChineseTraditional, separator: " "},
	{name: Czech, words: wordlists.Czech, separator: " "},
}

var languageAliases = map[string]string{
	"en":  English,
	"es":  Spanish,
	"fr":  French,
	"it":  Italian,
	"ja":  Japanese,
	"jp":  Japanese,
	"ko":  Korean,
	"zhs": ChineseSimplified,
	"zht": ChineseTraditional,
	"cs":  Czech,
}

func lookupLanguage(name string) (*language, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := languageAliases[name]; ok {
		name = canonical
	}
	for _, l := range languages {
		if l.name == name && len(l.words) == WordlistSize {
			return l, true
		}
	}
	return nil, false
}

// Languages returns the supported language names.
func Languages() []string {
	names := make([]string, 0, len(languages))
	for _, l := range languages {
		names = append(names, l.name)
	}
	return names
}

// WordsFromLanguage returns a copy of the wordlist for language,
// or nil when the language is unknown.
func WordsFromLanguage(name string) []string {
	l, ok := lookupLanguage(name)
	if !ok {
		return nil
	}
	return append([]string(nil), l.words...)
}

// Separator returns the word separator used when joining a phrase.
func Separator(name string) string {
	if l, ok := lookupLanguage(name); ok {
		return l.separator
	}
	return " "
}
