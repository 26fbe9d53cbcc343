package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ArtifactName builds a unique file name for a synthesized story. Names
// carry a UUID so concurrent narration requests never collide on disk.
func ArtifactName(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "mp3"
	}
	return fmt.Sprintf("cuento_%s.%s", uuid.NewString(), ext)
}
