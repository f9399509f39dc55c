package network

import (
	"fmt"

	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/logging"
	"github.com/chazu/segnet/pkg/mesh"
	"github.com/chazu/segnet/pkg/mesher"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Mesher regenerates segment meshes into their assets.
type Mesher struct {
	wall   config.WallConfig
	road   config.RoadConfig
	logger *zap.Logger
}

// NewMesher returns a mesher using the wall and road settings of cfg. A nil
// logger discards output.
func NewMesher(cfg config.Config, logger *zap.Logger) *Mesher {
	return &Mesher{
		wall:   cfg.Wall,
		road:   cfg.Road,
		logger: logging.OrNop(logger).Named("mesher"),
	}
}

func (m *Mesher) emitter(rec Record) mesher.FaceEmitter {
	if rec.Kind == KindRoad {
		return mesher.Road{Elevation: m.road.Elevation}
	}
	return mesher.Wall{
		Height:    m.wall.Height,
		Apertures: rec.Apertures,
		CapBottom: m.wall.CapBottom,
	}
}

// Regenerate rebuilds one segment's mesh into asset, reusing the asset's
// storage. On failure the asset is left with an empty mesh.
func (m *Mesher) Regenerate(n *Network, id SegmentID, asset *mesh.Asset) error {
	rec, ok := n.Segment(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	conns, err := n.Connections(id)
	if err != nil {
		return err
	}

	buf := mesh.Take(asset)
	err = mesher.Generate(&buf, rec.Segment, conns, rec.HalfWidth, m.emitter(rec))
	vertices, triangles := buf.VerticesCount(), buf.TrianglesCount()
	buf.Apply(asset)

	if err != nil {
		m.logger.Warn("segment mesh generation failed",
			zap.Uint32("segment", uint32(id)),
			zap.Stringer("kind", rec.Kind),
			zap.Error(err))
		return fmt.Errorf("network: %s %d: %w", rec.Kind, id, err)
	}

	m.logger.Debug("regenerated segment",
		zap.Uint32("segment", uint32(id)),
		zap.Stringer("kind", rec.Kind),
		zap.Int("start_neighbors", len(conns.Start)),
		zap.Int("end_neighbors", len(conns.End)),
		zap.Uint32("vertices", vertices),
		zap.Int("triangles", triangles))
	return nil
}

// RegenerateDirty rebuilds every dirty segment, creating assets for new
// segments and dropping the assets of removed ones. Segments that fail stay
// dirty; all failures are returned together.
func (m *Mesher) RegenerateDirty(n *Network, assets map[SegmentID]*mesh.Asset) error {
	for id := range assets {
		if _, ok := n.Segment(id); !ok {
			delete(assets, id)
		}
	}

	var errs error
	for _, id := range n.Dirty() {
		asset, ok := assets[id]
		if !ok {
			asset = mesh.NewAsset()
			assets[id] = asset
		}
		if err := m.Regenerate(n, id, asset); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n.MarkClean(id)
	}
	return errs
}

// BuildAll meshes every live segment from scratch and returns one flat mesh
// per segment, in ID order. It does not touch the dirty flags.
func (m *Mesher) BuildAll(n *Network) ([]*mesh.Mesh, error) {
	var meshes []*mesh.Mesh
	for _, rec := range n.Segments() {
		asset := mesh.NewAsset()
		if err := m.Regenerate(n, rec.ID, asset); err != nil {
			return nil, err
		}
		out, err := asset.Mesh(rec.PartName())
		if err != nil {
			return nil, fmt.Errorf("network: %w", err)
		}
		meshes = append(meshes, out)
	}
	return meshes, nil
}
