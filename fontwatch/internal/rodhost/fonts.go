package rodhost

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/mmfont/fontface"
)

// InjectFonts adds the marker stylesheet to page.
func InjectFonts(page *rod.Page, f fontface.Faces, legacyClass, unicodeClass string) error {
	if err := page.AddStyleTag("", f.CSS(legacyClass, unicodeClass)); err != nil {
		return fmt.Errorf("rodhost: inject fonts: %w", err)
	}
	return nil
}
