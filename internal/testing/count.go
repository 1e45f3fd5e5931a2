package testing

import "github.com/bgrewell/isobuild/pkg/iso9660"

// GetFileAndFolderCounts returns the number of directories below the root and the number of files in the image.
func GetFileAndFolderCounts(img *iso9660.ISO9660) (int, int) {
	l, _ := img.PathTables()
	folderCount := 0
	if l != nil && len(l.Records) > 0 {
		folderCount = len(l.Records) - 1
	}
	return folderCount, len(img.ListFiles())
}
