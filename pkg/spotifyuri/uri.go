// Package spotifyuri parses Spotify URIs and open.spotify.com links.
package spotifyuri

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	TypeTrack      = "track"
	TypeEpisode    = "episode"
	TypeAlbum      = "album"
	TypePlaylist   = "playlist"
	TypeArtist     = "artist"
	TypeShow       = "show"
	TypeCollection = "collection"
	TypeUser       = "user"

	// SiteHost is the host of public web links.
	SiteHost = "open.spotify.com"
)

var (
	// ErrInvalid is returned for input that is neither a URI nor a link.
	ErrInvalid = errors.New("not a spotify uri or link")

	uriRegex        = regexp.MustCompile(`^spotify:([a-z]+):([a-zA-Z0-9]+)$`)
	collectionRegex = regexp.MustCompile(`^spotify:user:([^:]+):collection(?::your-episodes)?$`)
	linkRegex       = regexp.MustCompile(`(?:https?://)?(?:open\.)?spotify\.com/(?:intl-[a-z]{2}/)?([a-z]+)/([a-zA-Z0-9]+)`)
)

// URI is a parsed Spotify resource reference.
type URI struct {
	Type string
	ID   string
	// User is set for collection uris.
	User string
}

// String renders the canonical spotify:<type>:<id> form.
func (u URI) String() string {
	if u.Type == TypeCollection {
		return fmt.Sprintf("spotify:user:%s:collection", u.User)
	}
	return fmt.Sprintf("spotify:%s:%s", u.Type, u.ID)
}

// Link renders the public web link.
func (u URI) Link() string {
	if u.Type == TypeCollection {
		return "https://" + SiteHost + "/collection/tracks"
	}
	return fmt.Sprintf("https://%s/%s/%s", SiteHost, u.Type, u.ID)
}

// IsCollection reports whether the uri is a user's saved tracks collection.
func (u URI) IsCollection() bool {
	return u.Type == TypeCollection
}

// Parse accepts spotify:<type>:<id>, spotify:user:<id>:collection and
// open.spotify.com/<type>/<id> links (with or without scheme, locale or query).
func Parse(raw string) (URI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return URI{}, ErrInvalid
	}

	if m := collectionRegex.FindStringSubmatch(raw); len(m) > 1 {
		return URI{Type: TypeCollection, User: m[1]}, nil
	}

	if m := uriRegex.FindStringSubmatch(raw); len(m) > 2 {
		return URI{Type: m[1], ID: m[2]}, nil
	}

	if m := linkRegex.FindStringSubmatch(raw); len(m) > 2 {
		if m[1] == TypeCollection {
			return URI{Type: TypeCollection}, nil
		}
		return URI{Type: m[1], ID: m[2]}, nil
	}

	return URI{}, ErrInvalid
}

// IDFromURI returns the third segment of a uri: the id of spotify:<type>:<id>
// and the owner of spotify:user:<id>:collection. It is "" for shorter input.
func IDFromURI(uri string) string {
	parts := strings.Split(uri, ":")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// TypeFromURI returns the resource type of a spotify uri.
func TypeFromURI(uri string) string {
	parsed, err := Parse(uri)
	if err != nil {
		return ""
	}
	return parsed.Type
}

// IsArtistURI reports whether uri points at an artist.
func IsArtistURI(uri string) bool {
	return strings.HasPrefix(uri, "spotify:artist:")
}

// IsCollectionURI reports whether uri is a user collection.
func IsCollectionURI(uri string) bool {
	return collectionRegex.MatchString(uri)
}

// Build returns spotify:<kind>:<id>.
func Build(kind, id string) string {
	return "spotify:" + kind + ":" + id
}
