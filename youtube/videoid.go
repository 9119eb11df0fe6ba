package youtube

import (
	"net/url"
	"strings"
)

const (
	shortLinkHost = "youtu.be"
	mainHost      = "youtube.com"
	livePrefix    = "/live/"
)

// ExtractVideoID returns the video ID embedded in a YouTube URL.
//
// Supported shapes, checked in order:
//
//	https://youtu.be/<id>
//	https://www.youtube.com/live/<id>
//	https://www.youtube.com/watch?v=<id>
//
// ok is false for empty input, unparseable URLs, other hosts, or when the
// expected position holds no ID.
func ExtractVideoID(rawURL string) (id string, ok bool) {
	if rawURL == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, shortLinkHost):
		id = strings.Trim(u.Path, "/")
	case strings.Contains(host, mainHost) && strings.HasPrefix(u.Path, livePrefix):
		id = strings.TrimPrefix(u.Path, livePrefix)
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
	case strings.Contains(host, mainHost):
		id = u.Query().Get("v")
	}

	return id, id != ""
}
