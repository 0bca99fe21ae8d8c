package models

import (
	"fmt"
	"strings"
)

// Kind is the name of a server-sent event.
type Kind string

const (
	KindReload    Kind = "reload"
	KindStatus    Kind = "status"
	KindTracklist Kind = "tracklist"
	KindVolume    Kind = "volume"
	KindPosition  Kind = "position"
	KindError     Kind = "error"
	KindWarn      Kind = "warn"
	KindSuccess   Kind = "success"
	KindInfo      Kind = "info"
)

// Kinds returns every event kind the push endpoint emits.
func Kinds() []Kind {
	return []Kind{
		KindReload,
		KindStatus,
		KindTracklist,
		KindVolume,
		KindPosition,
		KindError,
		KindWarn,
		KindSuccess,
		KindInfo,
	}
}

// ParseKind matches name case-insensitively against [Kinds].
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

// Severity returns the notification severity carried by k, if any.
func (k Kind) Severity() (Severity, bool) {
	switch k {
	case KindError:
		return SeverityError, true
	case KindWarn:
		return SeverityWarn, true
	case KindSuccess:
		return SeveritySuccess, true
	case KindInfo:
		return SeverityInfo, true
	default:
		return 0, false
	}
}

func (k Kind) String() string { return string(k) }

// Severity classifies a notification. Values are ordered from most to least severe.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarn
	SeveritySuccess
	SeverityInfo
)

// Kind returns the event kind that carries notifications of this severity.
func (s Severity) Kind() Kind {
	switch s {
	case SeverityError:
		return KindError
	case SeverityWarn:
		return KindWarn
	case SeveritySuccess:
		return KindSuccess
	case SeverityInfo:
		return KindInfo
	default:
		return ""
	}
}

func (s Severity) String() string {
	if k := s.Kind(); k != "" {
		return string(k)
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Message is a single event as delivered by a transport.
type Message struct {
	ID   string // last event id seen on the stream, may be empty
	Kind Kind
	Data string
}

func (m Message) String() string {
	return fmt.Sprintf("%s %q", m.Kind, m.Data)
}

// Tab is a search result tab.
type Tab string

const (
	TabAlbums    Tab = "albums"
	TabArtists   Tab = "artists"
	TabPlaylists Tab = "playlists"
	TabTracks    Tab = "tracks"
)

// Tabs returns the search tabs in display order.
func Tabs() []Tab {
	return []Tab{TabAlbums, TabArtists, TabPlaylists, TabTracks}
}

// Path returns the search path of the tab without a query string.
func (t Tab) Path() string {
	return "/search/" + string(t)
}

// TrackAction is an action on a single track.
type TrackAction string

const (
	ActionAddFavorite     TrackAction = "add_favorite"
	ActionRemoveFavorite  TrackAction = "remove_favorite"
	ActionAddToQueue      TrackAction = "add_to_queue"
	ActionRemoveFromQueue TrackAction = "remove_from_queue"
	ActionPlayNext        TrackAction = "play_next"
)

func TrackActions() []TrackAction {
	return []TrackAction{ActionAddFavorite, ActionRemoveFavorite, ActionAddToQueue, ActionRemoveFromQueue, ActionPlayNext}
}

// ParseTrackAction matches name case-insensitively, accepting "-" in place of "_".
func ParseTrackAction(name string) (TrackAction, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, a := range TrackActions() {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}
