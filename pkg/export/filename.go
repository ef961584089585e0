package export

import (
	"strings"
)

// WatchBaseURL is the prefix of every exported video link.
const WatchBaseURL = "https://www.youtube.com/watch?v="

var unsafeChars = strings.NewReplacer(
	`\`, "", "/", "", ":", "", "*", "", "?", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// SafeFilename removes characters that are illegal in Windows file names
// and trims leading and trailing dots and spaces. Unicode letters are kept.
// An empty result becomes "untitled".
func SafeFilename(name string) string {
	name = unsafeChars.Replace(name)
	name = strings.Trim(name, ". ")
	if name == "" {
		return "untitled"
	}
	return name
}

// WatchURL returns the watch link for a video ID.
func WatchURL(id string) string {
	return WatchBaseURL + id
}
