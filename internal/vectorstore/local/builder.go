package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/promptdesk/chat-backend/internal/metrics"
	"github.com/promptdesk/chat-backend/internal/vectorstore"
)

// Builder rebuilds the store at path inside a sibling staging directory and
// swaps it into place on Publish. The live index is untouched until then.
type Builder struct {
	path    string
	metrics *metrics.VectorStoreMetrics

	staging string
	client  *Client
}

func NewBuilder(path string, m *metrics.VectorStoreMetrics) *Builder {
	return &Builder{path: filepath.Clean(path), metrics: m}
}

func (b *Builder) Build(ctx context.Context) (vectorstore.Client, error) {
	if b.client != nil {
		return nil, fmt.Errorf("rebuild of %s already in progress", b.path)
	}

	b.staging = fmt.Sprintf("%s.building-%s", b.path, uuid.NewString())
	client, err := Open(b.staging, b.metrics)
	if err != nil {
		os.RemoveAll(b.staging)
		b.staging = ""
		return nil, err
	}
	b.client = client
	return client, nil
}

// Publish closes the staged client, removes the previous index and moves the
// staged one to path.
func (b *Builder) Publish(ctx context.Context) (err error) {
	defer func() { b.metrics.RecordOperation(backendName, "publish", err) }()

	if b.client == nil {
		return errors.New("no staged index to publish")
	}
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("closing staged index: %w", err)
	}

	var backup string
	if _, err := os.Stat(b.path); err == nil {
		backup = fmt.Sprintf("%s.old-%s", b.path, uuid.NewString())
		if err := os.Rename(b.path, backup); err != nil {
			return fmt.Errorf("moving previous index aside: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking previous index: %w", err)
	}

	if err := os.Rename(b.staging, b.path); err != nil {
		if backup != "" {
			os.Rename(backup, b.path)
		}
		return fmt.Errorf("moving staged index into place: %w", err)
	}

	b.client = nil
	b.staging = ""
	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("removing previous index: %w", err)
		}
	}
	return nil
}

// Abort discards the staged index. It is a no-op after Publish.
func (b *Builder) Abort(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	closeErr := b.client.Close()
	removeErr := os.RemoveAll(b.staging)
	b.client = nil
	b.staging = ""
	return errors.Join(closeErr, removeErr)
}

var _ vectorstore.Builder = (*Builder)(nil)
