package cloudinary

import (
	"strconv"
	"strings"
)

// DeliveryHost serves public assets.
const DeliveryHost = "https://res.cloudinary.com"

// BuildURL assembles an unsigned image delivery URL. A zero version is
// omitted. Empty steps are skipped.
func BuildURL(cloudName, publicID string, version int, steps []Step) string {
	parts := []string{DeliveryHost, cloudName, "image", "upload"}
	for _, s := range steps {
		if enc := s.Encode(); enc != "" {
			parts = append(parts, enc)
		}
	}
	if version > 0 {
		parts = append(parts, "v"+strconv.Itoa(version))
	}
	parts = append(parts, publicID)
	return strings.Join(parts, "/")
}
