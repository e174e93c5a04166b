package models

import "regexp"

var categoryPattern = regexp.MustCompile(`^([^|]+)\|([^|]+)\|(.+)$`)

// ParseCategory splits an upstream "category|image|metadata" descriptor.
func ParseCategory(raw string) (category string, imageUrl string, err error) {
	m := categoryPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", &MalformedCategoryError{Raw: raw}
	}
	return m[1], m[2], nil
}
