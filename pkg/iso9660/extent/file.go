package extent

import (
	"github.com/bgrewell/isobuild/pkg/iso9660/info"
)

// FileExtent is the data of one input file together with the extent it was placed at.
type FileExtent struct {
	FileIdentifier string `json:"file_identifier"`
	Source         string `json:"source"`
	Extent         Extent `json:"extent"`
	Data           []byte `json:"-"`
}

func (f *FileExtent) Type() string {
	return "File Extent"
}

func (f *FileExtent) Name() string {
	return f.FileIdentifier
}

func (f *FileExtent) Description() string {
	return f.Source
}

func (f *FileExtent) Properties() map[string]interface{} {
	return map[string]interface{}{
		"LocationOfFile": f.Extent.LBA,
		"SizeOfFile":     f.Extent.Length,
	}
}

func (f *FileExtent) Offset() int64 {
	return f.Extent.Offset()
}

func (f *FileExtent) Size() int {
	return int(f.Extent.Length)
}

func (f *FileExtent) GetObjects() []info.ImageObject {
	return []info.ImageObject{f}
}

// Marshal returns the file contents. Sector padding is the writer's job.
func (f *FileExtent) Marshal() ([]byte, error) {
	return f.Data, nil
}
