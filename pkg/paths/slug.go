package paths

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes accented characters and drops the combining
// marks, so "Café" slugs the same as "Cafe".
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases ASCII letters and digits from title and collapses every
// other run of characters into a single dash. Titles with nothing usable
// slug to "story" so folder names are never empty.
func Slugify(title string) string {
	folded, _, err := transform.String(foldTransformer, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	lastDash := false
	for _, ch := range folded {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			b.WriteRune(ch)
			lastDash = false
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch + ('a' - 'A'))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "story"
	}
	return slug
}

// StoryFolderName derives the on-disk folder for a story. The short id
// suffix keeps folders unique when two stories share a title.
func StoryFolderName(title, storyID string) string {
	shortID := storyID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	return Slugify(title) + "-" + shortID
}
