package sources

import (
	"regexp"
	"strings"
)

var cleanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s-\s\d{4}\sRemaster`),
	regexp.MustCompile(`(?i)\s-\sRemastered\s\d{4}`),
	regexp.MustCompile(`(?i)\s-\sRemastered`),
	regexp.MustCompile(`(?i)\s-\sRemaster`),
	regexp.MustCompile(`(?i)\s\(Remastered\)`),
	regexp.MustCompile(`(?i)\s\(Remaster\)`),
	regexp.MustCompile(`(?i)\s-\sRadio Edit`),
	regexp.MustCompile(`(?i)\s\(Radio Edit\)`),
	regexp.MustCompile(`(?i)\s-\sLive$`),
	regexp.MustCompile(`(?i)\s\(Live\)$`),
	regexp.MustCompile(`(?i)\s-\sMono`),
	regexp.MustCompile(`(?i)\s-\sStereo`),
	regexp.MustCompile(`\s*\[.*?\]\s*`),
	regexp.MustCompile(`\s*\(feat\..*?\)\s*`),
}

// CleanTitle strips remaster/edition qualifiers that streaming catalogs
// append to titles. Catalog databases index the bare title, so searching
// with the qualifiers attached misses otherwise exact matches.
func CleanTitle(title string) string {
	newTitle := title
	for _, re := range cleanPatterns {
		newTitle = re.ReplaceAllString(newTitle, "")
	}
	return strings.TrimSpace(newTitle)
}
