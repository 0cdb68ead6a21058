package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"teamspace/errors"

	"github.com/samber/lo"
)

// Dictionaries holds the built-in word lists, one file per language.
//
//go:embed censored/*.txt
var Dictionaries embed.FS

const DictionaryDir = "censored"

// Dictionary is the result of loading every word list of a directory.
type Dictionary struct {
	Words     []string
	Languages []string
}

// LoadDictionary reads every .txt file of dir as a language list ("fr.txt" is "fr")
// and merges extra words in. Blank lines are skipped and words are de-duplicated.
func LoadDictionary(fsys fs.FS, dir string, extra ...string) (Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Dictionary{}, err
	}

	var languages []string
	unique := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return Dictionary{}, err
		}
		// Scanner handles both \n and \r\n
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if word := strings.TrimSpace(scanner.Text()); word != "" {
				unique[word] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return Dictionary{}, err
		}
	}
	for _, word := range extra {
		if word = strings.TrimSpace(word); word != "" {
			unique[word] = struct{}{}
		}
	}

	if len(unique) == 0 {
		return Dictionary{}, errors.ErrEmptyWords
	}
	words := lo.Keys(unique)
	sort.Strings(words)
	return Dictionary{Words: words, Languages: languages}, nil
}
