package view

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	msgTweets    = "%d Tweets"
	msgFollowers = "%d Followers"
	msgFollows   = "%d Follows"
)

// Stats formats profile counters for display.
type Stats struct {
	printer *message.Printer
}

// NewStats returns a Stats for tag. Only English carries plural rules;
// other languages fall back to it.
func NewStats(tag language.Tag) *Stats {
	return &Stats{printer: message.NewPrinter(tag, message.Catalog(statsCatalog()))}
}

func statsCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	must(b.Set(language.English, msgTweets,
		plural.Selectf(1, "%d", "one", "%d Tweet", "other", "%d Tweets")))
	must(b.Set(language.English, msgFollowers,
		plural.Selectf(1, "%d", "one", "%d Follower", "other", "%d Followers")))
	// "Follows" reads the same for every count
	must(b.SetString(language.English, msgFollows, "%d Follows"))
	return b
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func (s *Stats) Tweets(n int) string { return s.printer.Sprintf(msgTweets, n) }
func (s *Stats) Followers(n int) string { return s.printer.Sprintf(msgFollowers, n) }
func (s *Stats) Follows(n int) string { return s.printer.Sprintf(msgFollows, n) }
