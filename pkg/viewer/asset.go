package viewer

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/taigrr/plinth/pkg/models"
	"github.com/taigrr/plinth/pkg/scene"
)

// Pending is an asset load in flight. Its result is set once.
type Pending struct {
	Path string

	done chan struct{}
	node *scene.Node
	err  error
}

// LoadAsset starts loading path in the background.
func LoadAsset(path string) *Pending {
	p := &Pending{Path: path, done: make(chan struct{})}
	go p.load()
	return p
}

func (p *Pending) load() {
	defer close(p.done)

	start := time.Now()
	mesh, err := models.Load(p.Path)
	if err != nil {
		p.err = err
		return
	}
	p.node = scene.FromModel(mesh)

	slog.Info("model loaded",
		"file", filepath.Base(p.Path),
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"materials", mesh.MaterialCount(),
		"surfaces", len(p.node.Surfaces),
		"elapsed", time.Since(start))
}

// Done is closed when the load finishes, successfully or not.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the load finishes or ctx ends. Cancelling ctx does not
// stop the load; a later Wait still gets the result.
func (p *Pending) Wait(ctx context.Context) (*scene.Node, error) {
	select {
	case <-p.done:
		return p.node, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
