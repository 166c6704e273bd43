package enrich

import (
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/bme-bharat/communityfeed/internal/models"
)

// avatarPalette holds the background colors used for synthesized avatars.
var avatarPalette = []string{
	"#E57373",
	"#F06292",
	"#BA68C8",
	"#7986CB",
	"#4FC3F7",
	"#4DB6AC",
	"#81C784",
	"#FFB74D",
	"#A1887F",
	"#90A4AE",
}

// FallbackAvatar synthesizes a deterministic initials+color avatar from a
// display name. The same name always yields the same avatar.
func FallbackAvatar(displayName string) models.Avatar {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return models.Avatar{Initials: "?", Color: avatarPalette[0]}
	}

	words := strings.Fields(name)
	var initials strings.Builder
	for i, w := range words {
		if i == 2 {
			break
		}
		r := []rune(w)[0]
		initials.WriteRune(unicode.ToUpper(r))
	}

	h := fnv.New32a()
	h.Write([]byte(name))
	color := avatarPalette[h.Sum32()%uint32(len(avatarPalette))]

	return models.Avatar{Initials: initials.String(), Color: color}
}
