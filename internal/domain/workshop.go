package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const workshopItemURL = "https://steamcommunity.com/sharedfiles/filedetails/?id=%d"

// WorkshopURL returns the Workshop page for an item
func WorkshopURL(id WorkshopID) string {
	return fmt.Sprintf(workshopItemURL, uint64(id))
}

// ParseWorkshopURL extracts the item ID from a Workshop page URL.
// The id query parameter must be a positive integer.
func ParseWorkshopURL(raw string) (WorkshopID, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWorkshopURL, raw)
	}
	idStr := strings.TrimSpace(u.Query().Get("id"))
	if idStr == "" {
		return 0, fmt.Errorf("%w: missing id in %q", ErrInvalidWorkshopURL, raw)
	}
	n, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrInvalidWorkshopURL, idStr)
	}
	return WorkshopID(n), nil
}

// ParseWorkshopRef accepts either a bare numeric ID or a Workshop page URL
func ParseWorkshopRef(ref string) (WorkshopID, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.ParseUint(ref, 10, 64); err == nil && n > 0 {
		return WorkshopID(n), nil
	}
	return ParseWorkshopURL(ref)
}

// FormatDate renders a Unix timestamp in seconds as YYYY-MM-DD (UTC)
func FormatDate(seconds int64) string {
	return time.Unix(seconds, 0).UTC().Format("2006-01-02")
}
