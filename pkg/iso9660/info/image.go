package info

// ImageObject is an interface that represents an object placed in an ISO9660 image.
// It is used to report the image layout so that tools like 'isocreate -layout' can display where every structure
// ended up.
type ImageObject interface {
	Type() string
	Name() string
	Description() string
	Properties() map[string]interface{}
	Offset() int64
	Size() int
	GetObjects() []ImageObject
	Marshal() ([]byte, error)
}
