package archive

import (
	"fmt"
	"time"
)

// Folder is the bucket prefix holding all rendered archives.
const Folder = "Discord_Messages"

// ArtifactPath builds the unique object path for one run's archive. The
// timestamp keeps paths unique per run so earlier archives are never
// overwritten.
func ArtifactPath(channelID string, now time.Time) string {
	return fmt.Sprintf("%s/unread_messages_%s_%s_%s.html",
		Folder, channelID, now.Format("2006-01-02"), now.Format("15-04-05"))
}
