package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DecodeDocument maps raw document data onto a typed struct. Numbers stored as
// strings (and vice versa) are tolerated, matching data written by older clients.
func DecodeDocument(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("decode document: new decoder: %w", err)
	}

	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// CloneData deep-copies document data so the copy can be mutated freely.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneData(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []int:
		return append([]int(nil), t...)
	default:
		return v
	}
}

// AttachmentPaths collects object-storage paths referenced anywhere in the
// document: values under "storagePath", "archivePath" or any "*StoragePath" key.
// The result is sorted and de-duplicated.
func AttachmentPaths(data map[string]any) []string {
	seen := map[string]struct{}{}
	collectAttachmentPaths(data, seen)

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func collectAttachmentPaths(v any, seen map[string]struct{}) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if s, ok := val.(string); ok && isAttachmentKey(k) {
				if s = strings.TrimSpace(s); s != "" {
					seen[s] = struct{}{}
				}
				continue
			}
			collectAttachmentPaths(val, seen)
		}
	case []any:
		for _, item := range t {
			collectAttachmentPaths(item, seen)
		}
	}
}

func isAttachmentKey(k string) bool {
	return k == "storagePath" || k == "archivePath" || strings.HasSuffix(k, "StoragePath")
}
