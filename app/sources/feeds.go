package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFeeds is the built-in list of world news plus Australian feeds,
// fetched in this order.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
		{Name: "CNN World", URL: "https://rss.cnn.com/rss/edition_world.rss"},
		{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
		{Name: "Reuters World", URL: "https://www.reutersagency.com/feed/?best-topics=world&post_type=best"},
		{Name: "New York Times", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml"},
		{Name: "Wall Street Journal", URL: "https://feeds.a.dj.com/rss/RSSWorldNews.xml"},
		{Name: "CNBC World", URL: "https://www.cnbc.com/id/100727362/device/rss/rss.html"},
		{Name: "NPR World", URL: "https://www.npr.org/rss/rss.php?id=1004"},
		{Name: "Sky News", URL: "https://feeds.skynews.com/feeds/rss/world.xml"},
		{Name: "Deutsche Welle", URL: "https://www.dw.com/en/top-stories/s-9097/rss"},
		{Name: "Times of India", URL: "https://timesofindia.indiatimes.com/rssfeeds/296589292.cms"},
		{Name: "ABC News Australia", URL: "https://www.abc.net.au/news/feed/51120/rss.xml"},
		{Name: "The Guardian Australia", URL: "https://www.theguardian.com/au/rss"},
		{Name: "SBS News", URL: "https://www.sbs.com.au/news/feed"},
		{Name: "Sydney Morning Herald", URL: "https://www.smh.com.au/rss/feed.xml"},
		{Name: "The Age", URL: "https://www.theage.com.au/rss/world.xml"},
		{Name: "The Australian", URL: "https://www.theaustralian.com.au/rss/world.xml"},
		{Name: "The Conversation", URL: "https://www.theconversation.com/au/rss/world"},
	}
}

type feedsFile struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds returns the configured feed list. An empty path selects the
// built-in defaults; a configured file replaces them entirely.
func LoadFeeds(path string) ([]Feed, error) {
	if path == "" {
		return DefaultFeeds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var file feedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s contains no feeds", path)
	}

	for i, f := range file.Feeds {
		if f.Name == "" {
			return nil, fmt.Errorf("feed %d in %s has no name", i, path)
		}
		if f.URL == "" {
			return nil, fmt.Errorf("feed '%s' in %s has no URL", f.Name, path)
		}
	}

	return file.Feeds, nil
}
