package drift

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

const shingleSize = 3

// Structure fingerprints the element structure of a page: the sequence of
// opening tags, each qualified by its sorted class list, in shingles of
// three. Text and other attributes are ignored, so two profiles of
// different people on the same layout come out close.
func Structure(page string) uint64 {
	tags := tagSequence(page)
	if len(tags) < shingleSize {
		return Fingerprint(tags)
	}

	shingles := make([]string, 0, len(tags)-shingleSize+1)
	for i := 0; i+shingleSize <= len(tags); i++ {
		shingles = append(shingles, strings.Join(tags[i:i+shingleSize], " "))
	}
	return Fingerprint(shingles)
}

func tagSequence(page string) []string {
	z := html.NewTokenizer(strings.NewReader(page))
	var tags []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) != "class" {
					continue
				}
				classes := strings.Fields(string(val))
				sort.Strings(classes)
				if len(classes) > 0 {
					tag += "." + strings.Join(classes, ".")
				}
			}
			tags = append(tags, tag)
		}
	}
}
