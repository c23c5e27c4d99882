package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BarotraumaAppID is the Steam app ID of Barotrauma
const BarotraumaAppID = 602960

// WorkshopID is a Steam Workshop published file ID.
// On the wire it may arrive as a number or a numeric string; an empty string is 0.
type WorkshopID uint64

// String returns the decimal form of the ID
func (id WorkshopID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseWorkshopID parses a decimal Workshop ID
func ParseWorkshopID(s string) (WorkshopID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing workshop id %q: %w", s, err)
	}
	return WorkshopID(n), nil
}

// UnmarshalJSON accepts a JSON number or string
func (id *WorkshopID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseWorkshopID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parsing workshop id: %w", err)
	}
	*id = WorkshopID(n)
	return nil
}

// Mod is an installed Barotrauma content package. A freshly listed mod may carry
// little more than its ID; metadata retrieval fills in the rest.
type Mod struct {
	SteamWorkshopID WorkshopID `json:"steamWorkshopId"`
	Name            string     `json:"name"`
	ModVersion      string     `json:"modVersion,omitempty"`
	CorePackage     bool       `json:"corePackage"`
	GameVersion     string     `json:"gameVersion,omitempty"`
	ExpectedHash    string     `json:"expectedHash,omitempty"`
	HomeDir         string     `json:"homeDir,omitempty"`
	ConsumerAppID   uint32     `json:"consumerAppId,omitempty"`
	Size            uint64     `json:"size,omitempty"`
	LastModified    int64      `json:"lastModified,omitempty"`
	Likes           uint64     `json:"likes,omitempty"`
	Subscribers     uint64     `json:"subscribers,omitempty"`
	Creator         string     `json:"creator,omitempty"`
	Description     string     `json:"description,omitempty"`
	PreviewImage    string     `json:"previewImage,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}

// Clone returns a copy that shares no slices with m
func (m Mod) Clone() Mod {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}

// HasMetadata reports whether Workshop metadata has been merged into the record
func (m Mod) HasMetadata() bool {
	return m.Size > 0 || m.LastModified > 0 || m.Creator != "" || m.PreviewImage != ""
}

// InstallOutcome is the per-mod result of an install_mods command
type InstallOutcome struct {
	ModID   WorkshopID `json:"modId"`
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
}

// WorkshopTag is a tag attached to a Workshop item
type WorkshopTag struct {
	Tag string `json:"tag"`
}

// WorkshopItem is the Workshop metadata for a single published file
type WorkshopItem struct {
	PublishedFileID WorkshopID    `json:"publishedfileid"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Creator         string        `json:"creator"`
	ConsumerAppID   uint32        `json:"consumer_app_id"`
	FileSize        uint64        `json:"file_size"`
	PreviewURL      string        `json:"preview_url"`
	TimeUpdated     int64         `json:"time_updated"`
	Subscriptions   uint64        `json:"subscriptions"`
	Favorited       uint64        `json:"favorited"`
	Tags            []WorkshopTag `json:"tags"`
}

// BuildInfo describes the backend build
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}
