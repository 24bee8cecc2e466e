package domain

// Capabilities are the server-granted permissions on file results.
type Capabilities struct {
	// CanDownloadFiles allows saving file results locally.
	CanDownloadFiles bool

	// PublicLinkEnabled allows fetching shareable links for files.
	PublicLinkEnabled bool
}

// FileOption is an action offered for a file result.
type FileOption string

// File options.
const (
	FileOptionDownload   FileOption = "download"
	FileOptionPublicLink FileOption = "public_link"
	FileOptionOpen       FileOption = "show_post"
)

// Label returns the menu text of the option.
func (o FileOption) Label() string {
	switch o {
	case FileOptionDownload:
		return "Download"
	case FileOptionPublicLink:
		return "Copy public link"
	case FileOptionOpen:
		return "Show post in messages"
	default:
		return string(o)
	}
}

// FileOptions returns the options available under these capabilities,
// in menu order.
func (c Capabilities) FileOptions() []FileOption {
	opts := make([]FileOption, 0, 3)
	if c.CanDownloadFiles {
		opts = append(opts, FileOptionDownload)
	}
	if c.PublicLinkEnabled {
		opts = append(opts, FileOptionPublicLink)
	}
	return append(opts, FileOptionOpen)
}
