package qdrant

import (
	"context"
	"net/http"
	"time"

	"github.com/bz-cogs/aiuser-rag/pkg/domain/interfaces"
)

type snapshotDescription struct {
	Name         string `json:"name"`
	CreationTime string `json:"creation_time"`
	Size         int64  `json:"size"`
}

func (d snapshotDescription) toInfo() interfaces.SnapshotInfo {
	info := interfaces.SnapshotInfo{
		Name:      d.Name,
		SizeBytes: d.Size,
	}
	// Qdrant reports creation_time without a zone suffix
	if ts, err := time.Parse("2006-01-02T15:04:05", d.CreationTime); err == nil {
		info.CreatedAt = ts.UTC()
	}
	return info
}

// CreateSnapshot triggers a server-side snapshot of the collection.
// Download and retention of the produced file belong to the operator.
func (c *Client) CreateSnapshot(ctx context.Context) (*interfaces.SnapshotInfo, error) {
	var desc snapshotDescription
	if err := c.do(ctx, http.MethodPost, c.collectionPath("/snapshots?wait=true"), nil, &desc); err != nil {
		return nil, err
	}
	info := desc.toInfo()
	return &info, nil
}

func (c *Client) ListSnapshots(ctx context.Context) ([]interfaces.SnapshotInfo, error) {
	var descs []snapshotDescription
	if err := c.do(ctx, http.MethodGet, c.collectionPath("/snapshots"), nil, &descs); err != nil {
		return nil, err
	}
	infos := make([]interfaces.SnapshotInfo, len(descs))
	for i, d := range descs {
		infos[i] = d.toInfo()
	}
	return infos, nil
}
