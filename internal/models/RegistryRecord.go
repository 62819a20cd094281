package models

import "strings"

// RegistryRecord is one administrator-curated partner creator. ExternalID is
// either a canonical channel id ("UC...") or a public handle ("@...").
type RegistryRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required"`
	ExternalID string `json:"externalId" validate:"required"`
	Handle     string `json:"handle,omitempty"`
	Category   string `json:"category,omitempty"`
	Logo       string `json:"logo,omitempty"`
}

// CanonicalChannelPrefix marks a canonical channel identifier as issued by the
// analytics provider.
const CanonicalChannelPrefix = "UC"

func (r *RegistryRecord) HasCanonicalID() bool {
	return strings.HasPrefix(r.ExternalID, CanonicalChannelPrefix)
}
