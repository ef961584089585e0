// Package duration parses the ISO 8601 durations reported by the YouTube
// Data API and splits videos into long-form and short-form buckets.
package duration

import (
	"regexp"
	"strconv"
)

// DefaultThreshold separates Shorts from regular videos, in seconds.
// A video is long when its duration is strictly greater than the threshold.
const DefaultThreshold = 60

// Bucket tags a classified entry.
type Bucket string

const (
	BucketLong  Bucket = "long"
	BucketShort Bucket = "short"
)

// isoPattern matches the time part of a duration such as PT1H2M3S.
// Only the prefix has to match, so trailing garbage is ignored.
var isoPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISO converts an encoded duration to seconds. Missing components
// count as zero; empty or unparseable input yields zero.
func ParseISO(encoded string) int {
	m := isoPattern.FindStringSubmatch(encoded)
	if m == nil {
		return 0
	}
	return component(m[1])*3600 + component(m[2])*60 + component(m[3])
}

func component(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Entry is a video annotated with its length and bucket.
type Entry struct {
	VideoID string
	Title   string
	Seconds int
	Bucket  Bucket
}

// NewEntry parses encoded and tags the entry against threshold.
func NewEntry(videoID, title, encoded string, threshold int) Entry {
	secs := ParseISO(encoded)
	return Entry{
		VideoID: videoID,
		Title:   title,
		Seconds: secs,
		Bucket:  bucketFor(secs, threshold),
	}
}

func bucketFor(seconds, threshold int) Bucket {
	if seconds > threshold {
		return BucketLong
	}
	return BucketShort
}

// Classify partitions entries into long (seconds > threshold) and short
// (seconds <= threshold). Input order is preserved within each partition
// and the Bucket field of every returned entry is set accordingly.
func Classify(entries []Entry, threshold int) (long, short []Entry) {
	for _, e := range entries {
		e.Bucket = bucketFor(e.Seconds, threshold)
		if e.Bucket == BucketLong {
			long = append(long, e)
		} else {
			short = append(short, e)
		}
	}
	return long, short
}
