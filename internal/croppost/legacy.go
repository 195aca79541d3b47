package croppost

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

type LegacyKind int

const (
	LegacyEmpty LegacyKind = iota
	LegacyParsed
)

// LegacyImages is the decoded form of the old crop_posts.images text column.
// Older rows stored a JSON array of either plain paths or upload descriptors.
// Anything that does not decode is treated as LegacyEmpty.
type LegacyImages struct {
	Kind LegacyKind
	Refs []string
}

type legacyDescriptor struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Scan implements sql.Scanner. It never returns an error for bad content.
func (l *LegacyImages) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = LegacyImages{Kind: LegacyEmpty}
	case []byte:
		*l = ParseLegacyImages(string(v))
	case string:
		*l = ParseLegacyImages(v)
	default:
		return fmt.Errorf("legacy images: unsupported type %T", src)
	}
	return nil
}

func ParseLegacyImages(raw string) LegacyImages {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return LegacyImages{Kind: LegacyEmpty}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return LegacyImages{Kind: LegacyEmpty}
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		if ref := legacyRef(item); ref != "" {
			refs = append(refs, ref)
		}
	}

	if len(refs) == 0 {
		return LegacyImages{Kind: LegacyEmpty}
	}
	return LegacyImages{Kind: LegacyParsed, Refs: refs}
}

func legacyRef(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var d legacyDescriptor
	if err := json.Unmarshal(item, &d); err != nil {
		return ""
	}
	switch {
	case d.URL != "":
		return d.URL
	case d.Filename != "":
		return d.Filename
	default:
		return d.Path
	}
}

// legacyImageDir is where uploads without a directory were written.
const legacyImageDir = "crop-images"

// legacyURL turns a stored reference into something a client can fetch.
// Absolute URLs pass through. Relative paths resolve under the static uploads
// root; bare file names resolve under legacyImageDir.
func legacyURL(uploadsURL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	rel := strings.TrimPrefix(path.Clean("/"+ref), "/")
	rel = strings.TrimPrefix(rel, "uploads/")
	if !strings.Contains(rel, "/") {
		rel = legacyImageDir + "/" + rel
	}
	return strings.TrimRight(uploadsURL, "/") + "/" + rel
}
