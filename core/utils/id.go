package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Submission codes avoid characters that are easy to confuse when read aloud.
const submissionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ3456789"

func GenerateSubmissionCode() (string, error) {
	return gonanoid.Generate(submissionCodeAlphabet, 6)
}

// GenerateID returns a short random identifier.
func GenerateID() string {
	id, err := gonanoid.Generate("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz", 7)
	if err != nil {
		return ""
	}
	return id
}

// EventSlug builds a URL slug from an event name. suffix disambiguates
// collisions and is ignored when empty.
func EventSlug(name, suffix string) string {
	s := slug.Make(name)
	if s == "" {
		s = strings.ToLower(GenerateID())
	}
	if suffix != "" {
		s = s + "-" + strings.ToLower(suffix)
	}
	return s
}

func ToUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

func ToString(id uuid.UUID) string {
	return id.String()
}
