package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of content item types a bundle can carry.
type Kind string

const (
	KindText     Kind = "text"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindAudio    Kind = "audio"
	KindPhoto    Kind = "photo"
)

// ParseKind validates a stored type tag.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindText, KindVideo, KindDocument, KindAudio, KindPhoto:
		return k, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// ContentItem is one deliverable entry of a bundle. Payload holds the literal
// text for KindText and the platform file id for every media kind.
type ContentItem struct {
	Kind    Kind
	Payload string
}

// Bundle is a titled, code-addressed ordered list of content items.
type Bundle struct {
	Code  string
	Title string
	Items []ContentItem
}

// BundleSummary is the listing view of a bundle.
type BundleSummary struct {
	Code  string
	Title string
}

// Label returns the title, falling back to the code when the title is empty.
func (b BundleSummary) Label() string {
	if strings.TrimSpace(b.Title) != "" {
		return b.Title
	}
	return b.Code
}

const itemSep = '|'

var ErrItemsMisaligned = errors.New("bundle types and payloads are not aligned")

// EncodeItems serialises items into two positionally aligned "|"-joined
// strings. Separators and backslashes inside payloads are escaped.
func EncodeItems(items []ContentItem) (types, payloads string) {
	ts := make([]string, len(items))
	ps := make([]string, len(items))
	for i, it := range items {
		ts[i] = string(it.Kind)
		ps[i] = escapePayload(it.Payload)
	}
	return strings.Join(ts, string(itemSep)), strings.Join(ps, string(itemSep))
}

// DecodeItems is the inverse of EncodeItems.
func DecodeItems(types, payloads string) ([]ContentItem, error) {
	if types == "" && payloads == "" {
		return nil, nil
	}
	ts := strings.Split(types, string(itemSep))
	ps := splitPayloads(payloads)
	if len(ts) != len(ps) {
		return nil, fmt.Errorf("%w: %d types, %d payloads", ErrItemsMisaligned, len(ts), len(ps))
	}
	items := make([]ContentItem, len(ts))
	for i := range ts {
		k, err := ParseKind(ts[i])
		if err != nil {
			return nil, err
		}
		items[i] = ContentItem{Kind: k, Payload: ps[i]}
	}
	return items, nil
}

func escapePayload(s string) string {
	if !strings.ContainsAny(s, `\|`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\\' || r == itemSep {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitPayloads(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == itemSep:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}
