package sdk

// Remote describes one database as published in the catalog.
type Remote struct {
	Filename string `json:"filename"`
	Info     Info   `json:"info"`
	Size     uint64 `json:"size"`
	ETag     string `json:"etag"`
}

// NewRemote builds a catalog entry whose filename is derived from info.
func NewRemote(info Info, size uint64, etag string) Remote {
	return Remote{
		Filename: info.Filename(),
		Info:     info,
		Size:     size,
		ETag:     etag,
	}
}

// Equal reports whether both entries describe the same content.
func (r Remote) Equal(other Remote) bool {
	return r == other
}
