package enrich

import (
	"github.com/navgator/navgator/internal/fsmeta"
	"github.com/navgator/navgator/internal/git"
	"github.com/navgator/navgator/internal/preview"
	"github.com/navgator/navgator/internal/tags"
)

// MetaFetcher reads the timestamps of a path.
type MetaFetcher interface {
	FetchMeta(path string) (fsmeta.Meta, error)
}

// TagReader reads the stored tags of a path.
type TagReader interface {
	ReadTags(path string) []string
}

// PreviewFetcher renders the preview text of a path.
type PreviewFetcher interface {
	FetchPreview(path string) string
}

// VCSFetcher summarises the repository containing a path. A nil summary
// means there is nothing to show.
type VCSFetcher interface {
	FetchVCS(path string) (*git.Summary, error)
}

// Fetchers bundles the collaborators used by a Scheduler.
type Fetchers struct {
	Meta    MetaFetcher
	Tags    TagReader
	Preview PreviewFetcher
	VCS     VCSFetcher
}

// MetaFunc adapts a function to MetaFetcher.
type MetaFunc func(path string) (fsmeta.Meta, error)

func (f MetaFunc) FetchMeta(path string) (fsmeta.Meta, error) { return f(path) }

// TagFunc adapts a function to TagReader.
type TagFunc func(path string) []string

func (f TagFunc) ReadTags(path string) []string { return f(path) }

// PreviewFunc adapts a function to PreviewFetcher.
type PreviewFunc func(path string) string

func (f PreviewFunc) FetchPreview(path string) string { return f(path) }

// VCSFunc adapts a function to VCSFetcher.
type VCSFunc func(path string) (*git.Summary, error)

func (f VCSFunc) FetchVCS(path string) (*git.Summary, error) { return f(path) }

// DefaultFetchers wires the filesystem, sidecar, preview and git readers.
func DefaultFetchers(p *preview.Previewer) Fetchers {
	return Fetchers{
		Meta:    MetaFunc(fsmeta.Fetch),
		Tags:    TagFunc(tags.Read),
		Preview: PreviewFunc(p.Fetch),
		VCS:     VCSFunc(git.Status),
	}
}
