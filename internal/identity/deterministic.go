package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys are namespaced by kind so a post and a tag with the same text never
// share an identifier.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PostUUID identifies a post across builds. Feed readers use it as the
// item GUID, so it must only depend on the slug.
func PostUUID(slug string) uuid.UUID {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return uuid.Nil
	}
	return UUID("go-blog:post:" + slug)
}
